package telemetry

// SensorTypes is the fixed set of sensor types the gateway relays.
// Each type maps to one broker topic ("sensor:temperature" etc) and one
// slot in the Cache.
var SensorTypes = []string{"temperature", "humidity", "voltage"}

// Reading is one sensor measurement as published on the broker.
//
// Timestamp is seconds since the Unix epoch with a fractional part.
// The value unit depends on the sensor type (°C, %, V).
type Reading struct {
	Value     float64 `json:"value"`
	Timestamp float64 `json:"timestamp"`
}

// IsKnownSensorType reports whether sensorType is one of the relayed types.
func IsKnownSensorType(sensorType string) bool {
	for _, t := range SensorTypes {
		if t == sensorType {
			return true
		}
	}
	return false
}
