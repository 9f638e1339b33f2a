package mqtt

import "strings"

// Topic constants for the sensorgate MQTT namespace.
//
// Sensor readings travel on flat "sensor:{type}" topics. The colon is a
// legal topic character in MQTT and is kept for compatibility with the
// publishers already deployed alongside this gateway.
const (
	// TopicPrefixSensor is the prefix for all sensor reading topics.
	TopicPrefixSensor = "sensor:"

	// TopicPrefixSystem is the base for gateway system topics.
	TopicPrefixSystem = "sensorgate/system"
)

// Topics provides builders for sensorgate MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	readings := topics.Sensor("temperature")
//	// Returns: "sensor:temperature"
type Topics struct{}

// Sensor returns the reading topic for a sensor type.
//
// Example: sensor:temperature
func (Topics) Sensor(sensorType string) string {
	return TopicPrefixSensor + sensorType
}

// SensorType extracts the sensor type from a reading topic.
// The second return value is false when the topic is not a sensor topic.
//
// Example: "sensor:humidity" -> ("humidity", true)
func (Topics) SensorType(topic string) (string, bool) {
	sensorType, ok := strings.CutPrefix(topic, TopicPrefixSensor)
	if !ok || sensorType == "" {
		return "", false
	}
	return sensorType, true
}

// SystemStatus returns the gateway online/offline status topic.
// Used for both the LWT and graceful shutdown messages.
//
// Example: sensorgate/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
