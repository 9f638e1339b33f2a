package telemetry

import (
	"encoding/json"
	"fmt"

	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/mqtt"
)

// Logger defines the logging interface used by the telemetry components.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Broker is the subset of the MQTT client the relay needs.
type Broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Broadcaster delivers a serialized update to all connected dashboards.
type Broadcaster interface {
	Broadcast(message []byte)
}

// Relay moves sensor readings from the broker to WebSocket dashboards.
//
// On Start it subscribes to every sensor topic. Each received reading is
// decoded, stored in the cache, then re-serialized once as
// {"<type>": <reading>} and handed to the broadcaster. Malformed
// payloads are logged and dropped without touching the cache.
type Relay struct {
	broker Broker
	cache  *Cache
	hub    Broadcaster
	qos    byte
	logger Logger
}

// NewRelay creates a relay wired to the given broker, cache and broadcaster.
func NewRelay(broker Broker, cache *Cache, hub Broadcaster, qos byte) *Relay {
	return &Relay{
		broker: broker,
		cache:  cache,
		hub:    hub,
		qos:    qos,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the relay.
func (r *Relay) SetLogger(logger Logger) {
	r.logger = logger
}

// Start subscribes to all sensor reading topics.
//
// A failed subscription is fatal: the gateway must not come up silently
// missing a sensor type, so the first error aborts startup.
func (r *Relay) Start() error {
	for _, sensorType := range SensorTypes {
		topic := mqtt.Topics{}.Sensor(sensorType)
		if err := r.broker.Subscribe(topic, r.qos, r.handleReading); err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
		r.logger.Debug("subscribed to sensor topic", "topic", topic)
	}

	r.logger.Info("telemetry relay started", "sensor_types", len(SensorTypes))
	return nil
}

// handleReading processes a single reading from the broker.
//
// Decode errors are logged here and swallowed so one bad publisher
// cannot generate error noise in the MQTT layer or stall the pipeline.
func (r *Relay) handleReading(topic string, payload []byte) error {
	sensorType, ok := mqtt.Topics{}.SensorType(topic)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnexpectedTopic, topic)
	}

	var reading map[string]any
	if err := json.Unmarshal(payload, &reading); err != nil {
		r.logger.Warn("dropping malformed reading",
			"sensor_type", sensorType,
			"error", err,
		)
		return nil
	}

	r.cache.Put(sensorType, reading)

	update := map[string]map[string]any{sensorType: reading}
	message, err := json.Marshal(update)
	if err != nil {
		// Unreachable for a map that just came out of json.Unmarshal.
		return fmt.Errorf("serializing update for %s: %w", sensorType, err)
	}

	r.hub.Broadcast(message)
	return nil
}
