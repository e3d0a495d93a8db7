package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	checks map[string]HealthChecker
}

// NewHealthHandler creates a new HealthHandler.
// Nil checkers are reported as "not configured".
func NewHealthHandler(db, cache HealthChecker) *HealthHandler {
	return &HealthHandler{checks: map[string]HealthChecker{
		"postgres": db,
		"redis":    cache,
	}}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is the liveness probe. It checks nothing.
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz reports 200 only when every dependency answers a ping.
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK

	for name, checker := range h.checks {
		switch {
		case checker == nil:
			resp.Checks[name] = "not configured"
		case checker.Ping(ctx) != nil:
			resp.Checks[name] = "unavailable"
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		default:
			resp.Checks[name] = "ok"
		}
	}

	writeJSON(w, r, status, resp)
}
