// Package telemetry implements the gateway's live reading pipeline.
//
// Sensors (or the built-in simulator) publish JSON readings to the
// broker's "sensor:{type}" topics. The Relay subscribes to the fixed set
// of sensor types, decodes each reading, stores it in the in-memory
// Cache, and fans a single serialized update out to all connected
// WebSocket dashboards.
//
//	Simulator → MQTT → Relay → Cache
//	                        ↘ Hub → dashboards
//
// Readings are ephemeral: the Cache holds only the most recent reading
// per sensor type (last write wins) and nothing is persisted. Clients
// that need history must record it themselves.
//
// Malformed readings are logged and dropped; they never stall the
// pipeline or evict the previous good reading.
package telemetry
