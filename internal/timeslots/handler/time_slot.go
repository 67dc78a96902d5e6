package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"printhub/internal/timeslots/service"
	apperrors "printhub/pkg/errors"
	httputil "printhub/pkg/http"
	"printhub/pkg/logger"
	"printhub/pkg/middleware"
	"printhub/pkg/model"
	"printhub/pkg/validation"
)

// PublicRoutes lets customers browse a shop's open slots before signing in.
var PublicRoutes = []middleware.PublicRoute{
	{Method: http.MethodGet, Prefix: "/api/v1/time-slots/shop/"},
}

type TimeSlotHandler struct {
	service   service.TimeSlotService
	validator *validation.Validator
	log       *logger.Logger
}

func NewTimeSlotHandler(service service.TimeSlotService, v *validation.Validator, log *logger.Logger) *TimeSlotHandler {
	return &TimeSlotHandler{
		service:   service,
		validator: v,
		log:       log,
	}
}

// Generate builds slots for one date, or for a run of days when days > 1.
func (h *TimeSlotHandler) Generate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "Generate", err)
		return
	}

	var req model.GenerateSlotsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Generate", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.writeError(w, "Generate", validation.ToAppError(err))
		return
	}

	var result any
	if req.Days > 1 {
		result, err = h.service.GenerateRange(r.Context(), caller.UserID, req.Date, req.Days)
	} else {
		result, err = h.service.Generate(r.Context(), caller.UserID, req.Date)
	}
	if err != nil {
		h.writeError(w, "Generate", err)
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Generate", "operation", "WriteCreated", "error", err)
	}
}

func (h *TimeSlotHandler) ListAvailable(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := requiredDate(r)
	if err != nil {
		h.writeError(w, "ListAvailable", err)
		return
	}

	slots, err := h.service.ListAvailable(r.Context(), ps.ByName("shopId"), date)
	if err != nil {
		h.writeError(w, "ListAvailable", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "ListAvailable", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TimeSlotHandler) ListOwn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "ListOwn", err)
		return
	}
	date, err := requiredDate(r)
	if err != nil {
		h.writeError(w, "ListOwn", err)
		return
	}

	slots, err := h.service.ListByDate(r.Context(), caller.UserID, date)
	if err != nil {
		h.writeError(w, "ListOwn", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "ListOwn", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TimeSlotHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slot, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, slot); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func requiredDate(r *http.Request) (string, error) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return "", apperrors.InvalidInput("date query parameter is required")
	}
	return date, nil
}

func (h *TimeSlotHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *TimeSlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/time-slots/generate", h.Generate)
	router.GET("/api/v1/time-slots", h.ListOwn)
	router.GET("/api/v1/time-slots/shop/:shopId/available", h.ListAvailable)
	router.GET("/api/v1/time-slots/id/:id", h.GetByID)
}
