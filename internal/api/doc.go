// Package api provides the HTTP REST API and WebSocket server for sensorgate.
//
// It exposes the latest sensor readings, the device information record, and
// authentication endpoints to browser clients. Live readings stream over a
// WebSocket hub that the telemetry relay broadcasts into.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
