package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleGetReadings returns the latest reading for every sensor type that
// has published so far, keyed by sensor type.
func (s *Server) handleGetReadings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.readings.All())
}

// handleGetReading returns the latest reading for a single sensor type.
//
// A type with no reading yet, or an unknown type, yields an empty object
// rather than an error: absence of data is not a client mistake, and the
// polling clients treat {} as "nothing yet".
func (s *Server) handleGetReading(w http.ResponseWriter, r *http.Request) {
	sensorType := chi.URLParam(r, "type")

	reading, ok := s.readings.Latest(sensorType)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, reading)
}
