package telemetry

import (
	"encoding/json"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/mqtt"
)

// Simulated value range: readings are uniform in [minValue, minValue+valueSpan)
// rounded to one decimal place.
const (
	minValue  = 10.0
	valueSpan = 90.0
)

// Publisher is the subset of the MQTT client the simulator needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Simulator publishes random readings for every sensor type at a fixed
// interval. It exists for development and demo deployments without real
// sensors; the readings travel the same broker path as real ones.
type Simulator struct {
	publisher Publisher
	interval  time.Duration
	qos       byte
	logger    Logger

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewSimulator creates a simulator publishing at the given interval.
func NewSimulator(publisher Publisher, interval time.Duration, qos byte) *Simulator {
	return &Simulator{
		publisher: publisher,
		interval:  interval,
		qos:       qos,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the simulator.
func (s *Simulator) SetLogger(logger Logger) {
	s.logger = logger
}

// Start launches the publishing loop in a background goroutine.
// Returns ErrSimulatorRunning if already started.
func (s *Simulator) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSimulatorRunning
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true

	go s.run(s.stop, s.done)

	s.logger.Info("sensor simulator started", "interval", s.interval)
	return nil
}

// Close stops the publishing loop and waits for it to exit.
// Closing a simulator that was never started is a no-op.
func (s *Simulator) Close() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	return nil
}

// run is the publishing loop.
func (s *Simulator) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.publishReadings()
		}
	}
}

// publishReadings publishes one reading per sensor type.
// All readings in a batch share the same timestamp.
func (s *Simulator) publishReadings() {
	now := float64(time.Now().UnixMilli()) / 1000.0

	for _, sensorType := range SensorTypes {
		reading := Reading{
			Value:     simulatedValue(),
			Timestamp: now,
		}

		payload, err := json.Marshal(reading)
		if err != nil {
			s.logger.Error("marshalling simulated reading", "error", err)
			continue
		}

		topic := mqtt.Topics{}.Sensor(sensorType)
		if err := s.publisher.Publish(topic, payload, s.qos, false); err != nil {
			// Broker hiccups are expected during reconnects; keep ticking.
			s.logger.Warn("publishing simulated reading failed",
				"topic", topic,
				"error", err,
			)
		}
	}
}

// simulatedValue returns a random reading in [10, 100] with one decimal place.
func simulatedValue() float64 {
	return math.Round((minValue+rand.Float64()*valueSpan)*10) / 10
}
