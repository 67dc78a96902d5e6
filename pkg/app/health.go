package app

import (
	"context"
	"net/http"
	"time"

	httputil "printhub/pkg/http"
	"printhub/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service,omitempty"`
	Database string `json:"database,omitempty"`
}

type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type HealthHandler struct {
	service string
	db      Pinger
	log     *logger.Logger
}

func NewHealthHandler(service string, db Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		db:      db,
		log:     log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: h.service,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.db == nil {
		h.writeReady(w, http.StatusServiceUnavailable, "unavailable", "not configured")
		return
	}

	if err := h.db.Ping(ctx, readpref.Primary()); err != nil {
		h.log.Error("Database health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		h.writeReady(w, http.StatusServiceUnavailable, "unavailable", "error")
		return
	}

	h.writeReady(w, http.StatusOK, "ready", "ok")
}

func (h *HealthHandler) writeReady(w http.ResponseWriter, status int, state, db string) {
	if err := httputil.WriteJSON(w, status, HealthResponse{
		Status:   state,
		Service:  h.service,
		Database: db,
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
