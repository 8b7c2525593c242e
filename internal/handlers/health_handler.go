package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/userhub/backend/internal/models"
	"go.uber.org/zap"
)

// readinessTimeout bounds the database ping of a readiness check
const readinessTimeout = 2 * time.Second

// Pinger checks that a dependency is reachable
type Pinger func(ctx context.Context) error

// HealthHandler handles health check requests
type HealthHandler struct {
	BaseHandler
	ping Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(ping Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		ping:        ping,
	}
}

// RegisterRoutes registers all health handler routes
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Live)
	r.Get("/livez", h.Live)
	r.Get("/readyz", h.Ready)
}

// Live handles GET /healthz and GET /livez
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} models.MessageResponse "Process is up"
// @Router /livez [get]
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.RespondMessage(w, http.StatusOK, "alive")
}

// Ready handles GET /readyz
// @Summary Readiness check
// @Description Report whether the database is reachable.
// @Tags health
// @Produce json
// @Success 200 {object} models.MessageResponse "Ready"
// @Failure 503 {object} models.ErrorResponse "Database unavailable"
// @Router /readyz [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		h.Logger.Warn("readiness check failed", zap.Error(err))
		h.RespondJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Status: "error", Message: "database unavailable"})
		return
	}

	h.RespondMessage(w, http.StatusOK, "ready")
}
