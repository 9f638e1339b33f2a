// Package mqtt provides MQTT client connectivity for sensorgate.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Tracked subscriptions replayed after reconnects
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The gateway uses MQTT as the ingest bus for sensor readings. Sensors
// (or the built-in simulator) publish JSON readings to "sensor:{type}"
// topics; the telemetry relay subscribes to those topics and fans the
// readings out to WebSocket dashboards.
//
//	Sensors / Simulator → MQTT Broker → Telemetry Relay → Dashboards
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to temperature readings
//	err = client.Subscribe(mqtt.Topics{}.Sensor("temperature"), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a reading
//	topic := mqtt.Topics{}.Sensor("temperature")
//	client.Publish(topic, []byte(`{"value":21.4,"timestamp":1756600000.5}`), 0, false)
package mqtt
