package health

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
)

const readyTimeout = 2 * time.Second

type Response struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// Pinger is satisfied by *client.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	store Pinger
	log   *logger.Logger
}

func NewHandler(store Pinger, log *logger.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, Response{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Error("Database health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, Response{
			Status:   "unavailable",
			Database: "error",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, Response{
		Status:   "ready",
		Database: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
