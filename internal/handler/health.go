package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is anything whose liveness can be checked; the store satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}

// HealthHandler reports whether the API and its store are up.
type HealthHandler struct {
	store       Pinger
	environment string
	logger      *slog.Logger
}

// NewHealthHandler creates a HealthHandler. store may be nil, in which case
// only the process itself is reported on.
func NewHealthHandler(store Pinger, environment string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, environment: environment, logger: logger}
}

// HandleHealth answers 200 {"status":"OK"} while the store answers pings,
// and 503 {"status":"UNAVAILABLE"} otherwise.
//
// HTTP: GET /api/health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:      "OK",
		Timestamp:   time.Now().UTC(),
		Environment: h.environment,
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Error("health check: store ping failed", slog.String("error", err.Error()))
			resp.Status = "UNAVAILABLE"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
