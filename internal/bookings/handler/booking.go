package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"printhub/internal/bookings/service"
	httputil "printhub/pkg/http"
	"printhub/pkg/logger"
	"printhub/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}
	req.CustomerID = caller.UserID
	if req.CustomerEmail == "" {
		req.CustomerEmail = caller.Email
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// List serves the shop's bookings (optionally for one date) to owners and
// the caller's own bookings to customers.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	var (
		bookings []*model.Booking
		total    int64
	)
	if caller.IsShopOwner() {
		bookings, total, err = h.service.ListByShop(r.Context(), caller.UserID, r.URL.Query().Get("date"), limit, offset)
	} else {
		bookings, total, err = h.service.ListByCustomer(r.Context(), caller.UserID, limit, offset)
	}
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	h.writeSuccess(w, "GetByID", booking)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	booking, err := h.service.Cancel(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}
	h.writeSuccess(w, "Cancel", booking)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "Complete", err)
		return
	}

	booking, err := h.service.Complete(r.Context(), caller.UserID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Complete", err)
		return
	}
	h.writeSuccess(w, "Complete", booking)
}

func (h *BookingHandler) writeSuccess(w http.ResponseWriter, op string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", op, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/id/:id/complete", h.Complete)
}
