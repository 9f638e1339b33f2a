package telemetry

import "errors"

// Domain-specific errors for the telemetry pipeline.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnexpectedTopic is returned when a message arrives on a topic
	// that is not a sensor reading topic.
	ErrUnexpectedTopic = errors.New("telemetry: message on unexpected topic")

	// ErrSimulatorRunning is returned when starting an already-running simulator.
	ErrSimulatorRunning = errors.New("telemetry: simulator already running")
)
