package mqtt

import "errors"

// Sentinel errors for broker operations; match with errors.Is.
var (
	// ErrNotConnected: an operation was attempted while disconnected.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed: the initial broker connection did not come up.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed: a publish was rejected or timed out.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed: a subscribe was rejected or timed out.
	// The telemetry relay treats this as fatal at startup.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrInvalidQoS: QoS outside 0..2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")

	// ErrInvalidTopic: empty topic.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")
)
