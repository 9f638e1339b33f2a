package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each component health probe.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Login (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// WebSocket (auth via single-use ticket, validated in handler)
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/logout", s.handleLogout)
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Latest sensor readings
			r.Get("/data", s.handleGetReadings)
			r.Get("/data/{type}", s.handleGetReading)

			// Device information record
			r.Get("/information", s.handleGetInformation)
			r.With(s.requireAdmin).Put("/information", s.handleUpdateInformation)
		})
	})

	return r
}

// handleHealth reports server status and per-component health checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	components := make(map[string]string, len(s.health))

	for name, checker := range s.health {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		if err := checker.HealthCheck(ctx); err != nil {
			components[name] = err.Error()
			status = "degraded"
		} else {
			components[name] = "ok"
		}
		cancel()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
	})
}
