package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"printhub/internal/operatinghours/service"
	httputil "printhub/pkg/http"
	"printhub/pkg/logger"
	"printhub/pkg/middleware"
	"printhub/pkg/model"
)

var PublicRoutes = []middleware.PublicRoute{
	{Method: http.MethodGet, Prefix: "/api/v1/operating-hours/shop/"},
}

type OperatingHoursHandler struct {
	service service.OperatingHoursService
	log     *logger.Logger
}

func NewOperatingHoursHandler(service service.OperatingHoursService, log *logger.Logger) *OperatingHoursHandler {
	return &OperatingHoursHandler{
		service: service,
		log:     log,
	}
}

func (h *OperatingHoursHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	week, err := h.service.Get(r.Context(), ps.ByName("shopId"))
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	if err := httputil.WriteSuccess(w, week); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OperatingHoursHandler) UpsertWeek(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "UpsertWeek", err)
		return
	}

	var hours []model.OperatingHours
	if err := httputil.DecodeJSON(r, &hours); err != nil {
		h.writeError(w, "UpsertWeek", err)
		return
	}

	week, err := h.service.UpsertWeek(r.Context(), caller.UserID, hours)
	if err != nil {
		h.writeError(w, "UpsertWeek", err)
		return
	}

	if err := httputil.WriteSuccess(w, week); err != nil {
		h.log.Error("failed to write success response", "handler", "UpsertWeek", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OperatingHoursHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *OperatingHoursHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/operating-hours/shop/:shopId", h.Get)
	router.PUT("/api/v1/operating-hours", h.UpsertWeek)
}
