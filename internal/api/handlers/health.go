package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/resumechat/internal/api"
	"github.com/rs/zerolog"
)

// SessionCounter reports active sessions.
type SessionCounter interface {
	Len(ctx context.Context) (int, error)
}

type HealthHandler struct {
	sessions SessionCounter
	log      zerolog.Logger
}

func NewHealthHandler(sessions SessionCounter, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{sessions: sessions, log: log}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// Health reports degraded when the session backend cannot be reached.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	n, err := h.sessions.Len(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("health check: session backend unavailable")
		api.Success(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded"})
		return
	}
	api.Success(w, http.StatusOK, HealthResponse{Status: "ok", Sessions: n})
}
