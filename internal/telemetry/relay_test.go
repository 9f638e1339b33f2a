package telemetry

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/mqtt"
)

// mockBroker records subscriptions and lets tests inject messages.
type mockBroker struct {
	mu       sync.Mutex
	handlers map[string]mqtt.MessageHandler
	failOn   string // topic that fails to subscribe
}

func newMockBroker() *mockBroker {
	return &mockBroker{handlers: make(map[string]mqtt.MessageHandler)}
}

func (b *mockBroker) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if topic == b.failOn {
		return mqtt.ErrSubscribeFailed
	}
	b.handlers[topic] = handler
	return nil
}

// deliver simulates a broker message arriving on a topic.
func (b *mockBroker) deliver(t *testing.T, topic string, payload []byte) error {
	t.Helper()

	b.mu.Lock()
	handler, ok := b.handlers[topic]
	b.mu.Unlock()
	if !ok {
		t.Fatalf("no subscription for topic %q", topic)
	}
	return handler(topic, payload)
}

// mockHub records broadcast messages.
type mockHub struct {
	mu       sync.Mutex
	messages [][]byte
}

func (h *mockHub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, message)
}

func (h *mockHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

func (h *mockHub) last() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.messages) == 0 {
		return nil
	}
	return h.messages[len(h.messages)-1]
}

func TestRelayStartSubscribesAllSensorTypes(t *testing.T) {
	broker := newMockBroker()
	relay := NewRelay(broker, NewCache(), &mockHub{}, 0)

	if err := relay.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for _, sensorType := range SensorTypes {
		topic := mqtt.Topics{}.Sensor(sensorType)
		if _, ok := broker.handlers[topic]; !ok {
			t.Errorf("missing subscription for %s", topic)
		}
	}
}

func TestRelayStartFailsOnSubscribeError(t *testing.T) {
	broker := newMockBroker()
	broker.failOn = "sensor:humidity"
	relay := NewRelay(broker, NewCache(), &mockHub{}, 0)

	err := relay.Start()
	if !errors.Is(err, mqtt.ErrSubscribeFailed) {
		t.Fatalf("Start() error = %v, want wrapped ErrSubscribeFailed", err)
	}
}

func TestRelayCachesAndBroadcastsReading(t *testing.T) {
	broker := newMockBroker()
	cache := NewCache()
	hub := &mockHub{}
	relay := NewRelay(broker, cache, hub, 0)

	if err := relay.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	payload := []byte(`{"value":42.5,"timestamp":1700000000.0}`)
	if err := broker.deliver(t, "sensor:temperature", payload); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	// Cache updated
	reading, ok := cache.Latest("temperature")
	if !ok {
		t.Fatal("reading not cached")
	}
	if reading["value"] != 42.5 {
		t.Errorf("cached value = %v, want 42.5", reading["value"])
	}

	// Broadcast envelope is {"temperature": {...}}
	if hub.count() != 1 {
		t.Fatalf("broadcast count = %d, want 1", hub.count())
	}
	var update map[string]map[string]any
	if err := json.Unmarshal(hub.last(), &update); err != nil {
		t.Fatalf("broadcast is not valid JSON: %v", err)
	}
	inner, ok := update["temperature"]
	if !ok {
		t.Fatalf("broadcast missing sensor type key: %s", hub.last())
	}
	if inner["value"] != 42.5 || inner["timestamp"] != 1700000000.0 {
		t.Errorf("broadcast reading = %v", inner)
	}
}

func TestRelayDropsMalformedPayload(t *testing.T) {
	broker := newMockBroker()
	cache := NewCache()
	hub := &mockHub{}
	relay := NewRelay(broker, cache, hub, 0)

	if err := relay.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Seed a good reading first.
	good := []byte(`{"value":3.3,"timestamp":1.0}`)
	if err := broker.deliver(t, "sensor:voltage", good); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	// Malformed payload: no error surfaced, no broadcast, cache untouched.
	if err := broker.deliver(t, "sensor:voltage", []byte(`{not json`)); err != nil {
		t.Errorf("malformed payload must be swallowed, got error %v", err)
	}
	if hub.count() != 1 {
		t.Errorf("broadcast count = %d, malformed payload must not broadcast", hub.count())
	}
	reading, _ := cache.Latest("voltage")
	if reading["value"] != 3.3 {
		t.Errorf("cached value = %v, malformed payload must not evict good reading", reading["value"])
	}

	// Pipeline still healthy afterwards.
	next := []byte(`{"value":3.4,"timestamp":2.0}`)
	if err := broker.deliver(t, "sensor:voltage", next); err != nil {
		t.Fatalf("handler error after malformed payload = %v", err)
	}
	if hub.count() != 2 {
		t.Errorf("broadcast count = %d, want 2", hub.count())
	}
}

func TestRelayRejectsUnexpectedTopic(t *testing.T) {
	relay := NewRelay(newMockBroker(), NewCache(), &mockHub{}, 0)

	err := relay.handleReading("sensorgate/system/status", []byte(`{}`))
	if !errors.Is(err, ErrUnexpectedTopic) {
		t.Errorf("handleReading() error = %v, want ErrUnexpectedTopic", err)
	}
}

func TestRelayPreservesExtraFieldsInBroadcast(t *testing.T) {
	broker := newMockBroker()
	hub := &mockHub{}
	relay := NewRelay(broker, NewCache(), hub, 0)

	if err := relay.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	payload := []byte(`{"value":55.0,"timestamp":1.0,"unit":"%"}`)
	if err := broker.deliver(t, "sensor:humidity", payload); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	var update map[string]map[string]any
	if err := json.Unmarshal(hub.last(), &update); err != nil {
		t.Fatalf("unmarshal broadcast: %v", err)
	}
	if update["humidity"]["unit"] != "%" {
		t.Errorf("extra field dropped from broadcast: %s", hub.last())
	}
}
