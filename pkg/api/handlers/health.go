package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marmos91/rowguard/pkg/engine"
)

// HealthCheckTimeout bounds the store ping of readiness probes.
const HealthCheckTimeout = 5 * time.Second

// HealthHandler handles the unauthenticated health endpoints.
type HealthHandler struct {
	engine    *engine.Engine
	startTime time.Time
}

// NewHealthHandler creates a new health handler. eng may be nil, in which
// case readiness reports unhealthy.
func NewHealthHandler(eng *engine.Engine) *HealthHandler {
	return &HealthHandler{engine: eng, startTime: time.Now()}
}

// Liveness handles GET /health. It succeeds while the process serves HTTP.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"service":    "rowguard",
		"started_at": h.startTime.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// StoreHealth is the readiness detail for the database.
type StoreHealth struct {
	Type              string `json:"type"`
	Status            string `json:"status"`
	Error             string `json:"error,omitempty"`
	Latency           string `json:"latency,omitempty"`
	ActiveConnections int    `json:"active_connections"`
	OpenDBConnections int    `json:"open_db_connections"`
}

// Readiness handles GET /health/ready. It pings the database and returns
// 503 when it does not answer.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("engine not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	s := h.engine.Store()
	start := time.Now()
	err := s.Healthcheck(ctx)

	health := StoreHealth{
		Type:              string(s.Dialect()),
		Status:            "healthy",
		Latency:           time.Since(start).String(),
		ActiveConnections: h.engine.ActiveConnections(),
		OpenDBConnections: s.OpenConnections(),
	}
	if err != nil {
		health.Status = "unhealthy"
		health.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Status:    "unhealthy",
			Timestamp: time.Now().UTC(),
			Data:      health,
		})
		return
	}
	writeJSON(w, http.StatusOK, healthyResponse(health))
}
