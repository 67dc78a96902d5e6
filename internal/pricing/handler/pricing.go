package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"printhub/internal/pricing/service"
	httputil "printhub/pkg/http"
	"printhub/pkg/logger"
	"printhub/pkg/middleware"
	"printhub/pkg/model"
)

var PublicRoutes = []middleware.PublicRoute{
	{Method: http.MethodGet, Prefix: "/api/v1/pricing/shop/"},
	{Method: http.MethodPost, Prefix: "/api/v1/pricing/quote"},
}

type PricingHandler struct {
	service service.PricingService
	log     *logger.Logger
}

func NewPricingHandler(service service.PricingService, log *logger.Logger) *PricingHandler {
	return &PricingHandler{
		service: service,
		log:     log,
	}
}

// List serves a shop's rules. Customers read them to see prices before booking.
func (h *PricingHandler) List(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rules, err := h.service.ListRules(r.Context(), ps.ByName("shopId"))
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, rules); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PricingHandler) Upsert(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "Upsert", err)
		return
	}

	var rule model.PricingRule
	if err := httputil.DecodeJSON(r, &rule); err != nil {
		h.writeError(w, "Upsert", err)
		return
	}
	rule.ShopOwnerID = caller.UserID

	if err := h.service.UpsertRule(r.Context(), &rule); err != nil {
		h.writeError(w, "Upsert", err)
		return
	}

	if err := httputil.WriteSuccess(w, rule); err != nil {
		h.log.Error("failed to write success response", "handler", "Upsert", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PricingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := h.service.DeleteRule(r.Context(), caller.UserID, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PricingHandler) Quote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.QuoteRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	quote, err := h.service.Quote(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "Quote", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PricingHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PricingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/pricing/shop/:shopId", h.List)
	router.PUT("/api/v1/pricing/rules", h.Upsert)
	router.DELETE("/api/v1/pricing/rules/:id", h.Delete)
	router.POST("/api/v1/pricing/quote", h.Quote)
}
