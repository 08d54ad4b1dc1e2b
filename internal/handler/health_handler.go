package handler

import (
	"net/http"

	"go.uber.org/zap"
)

// Pinger checks that a backing store is reachable.
type Pinger interface {
	Ping() error
}

type HealthHandler struct {
	store Pinger
	log   *zap.Logger
}

// NewHealthHandler reports healthy unconditionally when store is nil.
func NewHealthHandler(store Pinger, log *zap.Logger) *HealthHandler {
	return &HealthHandler{store: store, log: log}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(); err != nil {
			h.log.Warn("Health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
