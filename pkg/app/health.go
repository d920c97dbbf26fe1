package app

import (
	"context"
	"net/http"
	"time"

	httputil "innkeep/pkg/http"
	"innkeep/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Pinger is a backing dependency probed by /ready.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Pinger
	log    *logger.Logger
}

func NewHealthHandler(checks map[string]Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		log:    log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			h.log.Error("Dependency health check failed",
				"dependency", name,
				"error", err,
				"path", r.URL.Path,
			)
			deps[name] = "error"
			status, code = "unavailable", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	if err := httputil.WriteJSON(w, code, HealthResponse{Status: status, Dependencies: deps}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
