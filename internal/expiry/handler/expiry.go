package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"printhub/internal/expiry/service"
	httputil "printhub/pkg/http"
	"printhub/pkg/logger"
)

type ExpiryHandler struct {
	service service.ExpiryService
	log     *logger.Logger
}

func NewExpiryHandler(service service.ExpiryService, log *logger.Logger) *ExpiryHandler {
	return &ExpiryHandler{
		service: service,
		log:     log,
	}
}

func (h *ExpiryHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}

	stats, err := h.service.Stats(r.Context(), caller.UserID)
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Stats", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ExpiryHandler) Expiring(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "Expiring", err)
		return
	}

	files, err := h.service.ExpiringFiles(r.Context(), caller.UserID)
	if err != nil {
		h.writeError(w, "Expiring", err)
		return
	}

	if err := httputil.WriteSuccess(w, files); err != nil {
		h.log.Error("failed to write success response", "handler", "Expiring", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ExpiryHandler) Run(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := httputil.ShopOwner(r); err != nil {
		h.writeError(w, "Run", err)
		return
	}

	result, err := h.service.RunNow(r.Context())
	if err != nil {
		h.writeError(w, "Run", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Run", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ExpiryHandler) LastRun(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := httputil.ShopOwner(r); err != nil {
		h.writeError(w, "LastRun", err)
		return
	}

	marker, err := h.service.LastRun(r.Context())
	if err != nil {
		h.writeError(w, "LastRun", err)
		return
	}

	if err := httputil.WriteSuccess(w, marker); err != nil {
		h.log.Error("failed to write success response", "handler", "LastRun", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ExpiryHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ExpiryHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/expiry/stats", h.Stats)
	router.GET("/api/v1/expiry/expiring", h.Expiring)
	router.POST("/api/v1/expiry/run", h.Run)
	router.GET("/api/v1/expiry/last-run", h.LastRun)
}
