package handler

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"printhub/internal/analytics/service"
	httputil "printhub/pkg/http"
	"printhub/pkg/logger"
)

const defaultDays = 7

type AnalyticsHandler struct {
	service service.AnalyticsService
	log     *logger.Logger
}

func NewAnalyticsHandler(service service.AnalyticsService, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		log:     log,
	}
}

func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "Summary", err)
		return
	}
	days, err := httputil.QueryInt(r, "days", defaultDays)
	if err != nil {
		h.writeError(w, "Summary", err)
		return
	}

	summary, err := h.service.Summary(r.Context(), caller.UserID, days)
	if err != nil {
		h.writeError(w, "Summary", err)
		return
	}

	if err := httputil.WriteSuccess(w, summary); err != nil {
		h.log.Error("failed to write success response", "handler", "Summary", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "Export", err)
		return
	}
	days, err := httputil.QueryInt(r, "days", defaultDays)
	if err != nil {
		h.writeError(w, "Export", err)
		return
	}

	content, fileName, err := h.service.ExportCSV(r.Context(), caller.UserID, days)
	if err != nil {
		h.writeError(w, "Export", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		h.log.Error("failed to write csv export", "handler", "Export", "error", err)
	}
}

func (h *AnalyticsHandler) Customers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "Customers", err)
		return
	}

	customers, err := h.service.Customers(r.Context(), caller.UserID)
	if err != nil {
		h.writeError(w, "Customers", err)
		return
	}

	if err := httputil.WriteSuccess(w, customers); err != nil {
		h.log.Error("failed to write success response", "handler", "Customers", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AnalyticsHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AnalyticsHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/analytics/summary", h.Summary)
	router.GET("/api/v1/analytics/export", h.Export)
	router.GET("/api/v1/analytics/customers", h.Customers)
}
