// sensorgate - IoT Sensor Gateway
//
// This is the main entry point for the sensorgate application.
// sensorgate fronts a fleet of MQTT sensor publishers with:
//   - A latest-value cache and WebSocket fan-out for live dashboards
//   - A durable device information record with a cache-aside Redis layer
//   - Token-based authentication backed by a local user table
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ndtrung-dev/sensorgate/migrations"

	"github.com/ndtrung-dev/sensorgate/internal/api"
	"github.com/ndtrung-dev/sensorgate/internal/auth"
	"github.com/ndtrung-dev/sensorgate/internal/information"
	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/config"
	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/database"
	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/logging"
	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/mqtt"
	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/redis"
	"github.com/ndtrung-dev/sensorgate/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting sensorgate",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Ensure the information record for this device exists so the
	// information API always has a row to serve.
	infoRepo := information.NewSQLiteRepository(db)
	if ensureErr := infoRepo.Ensure(ctx, cfg.Device.Name); ensureErr != nil {
		return fmt.Errorf("ensuring information record: %w", ensureErr)
	}

	// Seed the initial admin account on first boot
	userRepo := auth.NewUserRepository(db.DB)
	if _, seedErr := auth.SeedAdmin(ctx, userRepo, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to Redis. A failure here is not fatal: the information
	// store degrades to durable-only reads until Redis comes back at
	// the next restart.
	var cacheClient information.CacheClient
	redisClient, err := redis.Connect(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, information reads will skip the cache",
			"addr", cfg.Redis.Addr,
			"error", err,
		)
	} else {
		defer func() {
			log.Info("closing redis connection")
			if closeErr := redisClient.Close(); closeErr != nil {
				log.Error("error closing redis", "error", closeErr)
			}
		}()
		log.Info("redis connected", "addr", cfg.Redis.Addr)
		cacheClient = redisClient
	}

	// Information store (cache-aside over SQLite + Redis)
	infoStore := information.NewStore(infoRepo, cacheClient, cfg.Redis.GetCacheTTL())
	infoStore.SetLogger(log)

	// Telemetry pipeline: broker -> cache -> WebSocket hub
	readings := telemetry.NewCache()
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	qos := byte(cfg.MQTT.QoS)
	relay := telemetry.NewRelay(mqttClient, readings, hub, qos)
	relay.SetLogger(log)
	if startErr := relay.Start(); startErr != nil {
		return fmt.Errorf("starting telemetry relay: %w", startErr)
	}

	// Optional simulated publishers for development
	if cfg.Simulator.Enabled {
		simulator := telemetry.NewSimulator(mqttClient,
			time.Duration(cfg.Simulator.Interval)*time.Second, qos)
		simulator.SetLogger(log)
		if simErr := simulator.Start(); simErr != nil {
			return fmt.Errorf("starting simulator: %w", simErr)
		}
		defer func() {
			log.Info("stopping simulator")
			if closeErr := simulator.Close(); closeErr != nil {
				log.Error("error stopping simulator", "error", closeErr)
			}
		}()
		log.Info("simulator started", "interval_s", cfg.Simulator.Interval)
	}

	// API server
	health := map[string]api.HealthChecker{
		"database": db,
		"mqtt":     mqttClient,
	}
	if redisClient != nil {
		health["redis"] = redisClient
	}

	apiServer, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Security:    cfg.Security,
		Logger:      log,
		Readings:    readings,
		Information: infoStore,
		DeviceName:  cfg.Device.Name,
		Users:       userRepo,
		Health:      health,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, redisClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Simulator (if enabled)
	// 3. Redis (if connected)
	// 4. MQTT
	// 5. Database

	log.Info("sensorgate stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SENSORGATE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SENSORGATE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// The redis client may be nil when the gateway is running without a cache.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, redisClient *redis.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if redisClient != nil {
		if err := redisClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}

	return nil
}
