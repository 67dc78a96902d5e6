package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"printhub/internal/shops/service"
	apperrors "printhub/pkg/errors"
	"printhub/pkg/geo"
	httputil "printhub/pkg/http"
	"printhub/pkg/logger"
	"printhub/pkg/middleware"
	"printhub/pkg/model"
)

// PublicRoutes lists the directory endpoints anonymous visitors may browse.
// Owner routes under the same prefix still resolve the caller in the handler.
var PublicRoutes = []middleware.PublicRoute{
	{Method: http.MethodGet, Prefix: "/api/v1/shops"},
}

type ShopHandler struct {
	service service.ShopService
	log     *logger.Logger
}

func NewShopHandler(service service.ShopService, log *logger.Logger) *ShopHandler {
	return &ShopHandler{
		service: service,
		log:     log,
	}
}

type ownerNameRequest struct {
	FullName string `json:"full_name"`
}

func (h *ShopHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	shops, total, err := h.service.ListPublic(r.Context(), r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, shops, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *ShopHandler) Nearby(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	lat, err := httputil.QueryFloat(r, "lat")
	if err != nil {
		h.writeError(w, "Nearby", err)
		return
	}
	lng, err := httputil.QueryFloat(r, "lng")
	if err != nil {
		h.writeError(w, "Nearby", err)
		return
	}
	if lat == nil || lng == nil {
		h.writeError(w, "Nearby", apperrors.InvalidInput("lat and lng query parameters are required"))
		return
	}
	radius, err := httputil.QueryFloat(r, "radius")
	if err != nil {
		h.writeError(w, "Nearby", err)
		return
	}

	var radiusKm float64
	if radius != nil {
		radiusKm = *radius
	}

	shops, err := h.service.FindNearby(r.Context(), geo.Point{Lat: *lat, Lng: *lng}, radiusKm)
	if err != nil {
		h.writeError(w, "Nearby", err)
		return
	}
	h.writeSuccess(w, "Nearby", shops)
}

func (h *ShopHandler) GetPublic(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	shop, err := h.service.GetPublic(r.Context(), ps.ByName("shopId"))
	if err != nil {
		h.writeError(w, "GetPublic", err)
		return
	}
	h.writeSuccess(w, "GetPublic", shop)
}

func (h *ShopHandler) Mine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "Mine", err)
		return
	}

	details, err := h.service.Details(r.Context(), caller.UserID)
	if err != nil {
		h.writeError(w, "Mine", err)
		return
	}
	h.writeSuccess(w, "Mine", details)
}

func (h *ShopHandler) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var profile model.ShopProfile
	if err := httputil.DecodeJSON(r, &profile); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	details, err := h.service.Update(r.Context(), caller.UserID, &profile)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	h.writeSuccess(w, "Update", details)
}

func (h *ShopHandler) Sync(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "Sync", err)
		return
	}

	report, err := h.service.SyncCheck(r.Context(), caller.UserID)
	if err != nil {
		h.writeError(w, "Sync", err)
		return
	}
	h.writeSuccess(w, "Sync", report)
}

func (h *ShopHandler) UpdateOwnerName(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "UpdateOwnerName", err)
		return
	}

	var req ownerNameRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "UpdateOwnerName", err)
		return
	}

	if err := h.service.UpdateOwnerName(r.Context(), caller.UserID, req.FullName); err != nil {
		h.writeError(w, "UpdateOwnerName", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *ShopHandler) writeSuccess(w http.ResponseWriter, op string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", op, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ShopHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ShopHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/shops", h.List)
	router.GET("/api/v1/shops/nearby", h.Nearby)
	router.GET("/api/v1/shops/id/:shopId", h.GetPublic)
	router.GET("/api/v1/shops/mine", h.Mine)
	router.PUT("/api/v1/shops/mine", h.Update)
	router.POST("/api/v1/shops/mine/sync", h.Sync)
	router.PUT("/api/v1/shops/mine/owner-name", h.UpdateOwnerName)
}
