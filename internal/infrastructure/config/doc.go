// Package config provides configuration loading for sensorgate.
//
// Configuration is loaded from a YAML file with hardcoded defaults and
// environment variable overrides, in that order of precedence:
//
//  1. Defaults (defaultConfig)
//  2. YAML file values
//  3. SENSORGATE_* environment variables
//
// Secrets (JWT signing key, broker and Redis credentials) should always be
// supplied via environment variables rather than committed to the YAML file.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.MQTT.Broker.Host)
package config
