package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/ndtrung-dev/sensorgate/internal/information"
)

// handleGetInformation returns the device information record.
func (s *Server) handleGetInformation(w http.ResponseWriter, r *http.Request) {
	if s.info == nil {
		writeInternalError(w, "information store not configured")
		return
	}

	record, err := s.info.Get(r.Context(), s.deviceName)
	if err != nil {
		if errors.Is(err, information.ErrNotFound) {
			writeNotFound(w, "information record not found")
			return
		}
		s.logger.Error("information read failed", "error", err)
		writeInternalError(w, "failed to read information")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// updateInformationResponse reports which fields an update applied and the
// resulting record.
type updateInformationResponse struct {
	Updated     []string          `json:"updated"`
	Information map[string]string `json:"information"`
}

// handleUpdateInformation applies a partial update to the information record.
//
// The body is a JSON object of field name to value. A single unknown field
// rejects the whole request; no fields are applied.
func (s *Server) handleUpdateInformation(w http.ResponseWriter, r *http.Request) {
	if s.info == nil {
		writeInternalError(w, "information store not configured")
		return
	}

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	record, err := s.info.Update(r.Context(), s.deviceName, fields)
	if err != nil {
		switch {
		case errors.Is(err, information.ErrUnknownField):
			writeValidationError(w, err.Error())
		case errors.Is(err, information.ErrNotFound):
			writeNotFound(w, "information record not found")
		default:
			s.logger.Error("information update failed", "error", err)
			writeInternalError(w, "failed to update information")
		}
		return
	}

	updated := make([]string, 0, len(fields))
	for name := range fields {
		updated = append(updated, name)
	}
	sort.Strings(updated)

	s.logger.Info("information updated", "fields", updated)

	writeJSON(w, http.StatusOK, updateInformationResponse{
		Updated:     updated,
		Information: record,
	})
}
