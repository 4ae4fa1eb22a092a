package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and, when DB is set, database reachability.
type HealthHandler struct {
	DB     Pinger
	Logger *zap.Logger
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			h.Logger.Warn("health check: database unreachable", zap.Error(err))
			writeJSON(w, r, h.Logger, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, r, h.Logger, http.StatusOK, map[string]string{"status": "ok"})
}
