package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"printhub/internal/settings/service"
	httputil "printhub/pkg/http"
	"printhub/pkg/logger"
	"printhub/pkg/middleware"
	"printhub/pkg/model"
)

var PublicRoutes = []middleware.PublicRoute{
	{Method: http.MethodGet, Prefix: "/api/v1/settings/slots/shop/"},
}

type SettingsHandler struct {
	service service.SettingsService
	log     *logger.Logger
}

func NewSettingsHandler(service service.SettingsService, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		log:     log,
	}
}

func (h *SettingsHandler) GetQueue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "GetQueue", err)
		return
	}

	settings, err := h.service.QueueSettings(r.Context(), caller.UserID)
	if err != nil {
		h.writeError(w, "GetQueue", err)
		return
	}
	h.writeSuccess(w, "GetQueue", settings)
}

func (h *SettingsHandler) PutQueue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "PutQueue", err)
		return
	}

	var settings model.PrintQueueSettings
	if err := httputil.DecodeJSON(r, &settings); err != nil {
		h.writeError(w, "PutQueue", err)
		return
	}
	settings.ShopOwnerID = caller.UserID

	if err := h.service.UpsertQueueSettings(r.Context(), &settings); err != nil {
		h.writeError(w, "PutQueue", err)
		return
	}
	h.writeSuccess(w, "PutQueue", settings)
}

func (h *SettingsHandler) GetSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "GetSlots", err)
		return
	}
	h.slotSettings(w, r, "GetSlots", caller.UserID)
}

// GetShopSlots lets customers see how far ahead a shop takes bookings.
func (h *SettingsHandler) GetShopSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.slotSettings(w, r, "GetShopSlots", ps.ByName("shopId"))
}

func (h *SettingsHandler) slotSettings(w http.ResponseWriter, r *http.Request, op, shopOwnerID string) {
	settings, err := h.service.SlotSettings(r.Context(), shopOwnerID)
	if err != nil {
		h.writeError(w, op, err)
		return
	}
	h.writeSuccess(w, op, settings)
}

func (h *SettingsHandler) PutSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "PutSlots", err)
		return
	}

	var settings model.SlotSettings
	if err := httputil.DecodeJSON(r, &settings); err != nil {
		h.writeError(w, "PutSlots", err)
		return
	}
	settings.ShopOwnerID = caller.UserID

	if err := h.service.UpsertSlotSettings(r.Context(), &settings); err != nil {
		h.writeError(w, "PutSlots", err)
		return
	}
	h.writeSuccess(w, "PutSlots", settings)
}

func (h *SettingsHandler) GetNotifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "GetNotifications", err)
		return
	}

	settings, err := h.service.NotificationSettings(r.Context(), caller.UserID)
	if err != nil {
		h.writeError(w, "GetNotifications", err)
		return
	}
	h.writeSuccess(w, "GetNotifications", settings)
}

func (h *SettingsHandler) PutNotifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "PutNotifications", err)
		return
	}

	var settings model.NotificationSettings
	if err := httputil.DecodeJSON(r, &settings); err != nil {
		h.writeError(w, "PutNotifications", err)
		return
	}
	settings.ShopOwnerID = caller.UserID

	if err := h.service.UpsertNotificationSettings(r.Context(), &settings); err != nil {
		h.writeError(w, "PutNotifications", err)
		return
	}
	h.writeSuccess(w, "PutNotifications", settings)
}

func (h *SettingsHandler) ListEquipment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "ListEquipment", err)
		return
	}

	items, err := h.service.ListEquipment(r.Context(), caller.UserID)
	if err != nil {
		h.writeError(w, "ListEquipment", err)
		return
	}
	h.writeSuccess(w, "ListEquipment", items)
}

func (h *SettingsHandler) CreateEquipment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "CreateEquipment", err)
		return
	}

	var eq model.Equipment
	if err := httputil.DecodeJSON(r, &eq); err != nil {
		h.writeError(w, "CreateEquipment", err)
		return
	}
	eq.ShopOwnerID = caller.UserID

	if err := h.service.CreateEquipment(r.Context(), &eq); err != nil {
		h.writeError(w, "CreateEquipment", err)
		return
	}

	if err := httputil.WriteCreated(w, eq); err != nil {
		h.log.Error("failed to write success response", "handler", "CreateEquipment", "operation", "WriteCreated", "error", err)
	}
}

func (h *SettingsHandler) UpdateEquipment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "UpdateEquipment", err)
		return
	}

	var eq model.Equipment
	if err := httputil.DecodeJSON(r, &eq); err != nil {
		h.writeError(w, "UpdateEquipment", err)
		return
	}
	eq.ID = ps.ByName("id")
	eq.ShopOwnerID = caller.UserID

	if err := h.service.UpdateEquipment(r.Context(), &eq); err != nil {
		h.writeError(w, "UpdateEquipment", err)
		return
	}
	h.writeSuccess(w, "UpdateEquipment", eq)
}

func (h *SettingsHandler) DeleteEquipment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "DeleteEquipment", err)
		return
	}

	if err := h.service.DeleteEquipment(r.Context(), caller.UserID, ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteEquipment", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SettingsHandler) writeSuccess(w http.ResponseWriter, op string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", op, "operation", "WriteSuccess", "error", err)
	}
}

func (h *SettingsHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *SettingsHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/settings/queue", h.GetQueue)
	router.PUT("/api/v1/settings/queue", h.PutQueue)
	router.GET("/api/v1/settings/slots", h.GetSlots)
	router.PUT("/api/v1/settings/slots", h.PutSlots)
	router.GET("/api/v1/settings/slots/shop/:shopId", h.GetShopSlots)
	router.GET("/api/v1/settings/notifications", h.GetNotifications)
	router.PUT("/api/v1/settings/notifications", h.PutNotifications)
	router.GET("/api/v1/settings/equipment", h.ListEquipment)
	router.POST("/api/v1/settings/equipment", h.CreateEquipment)
	router.PUT("/api/v1/settings/equipment/:id", h.UpdateEquipment)
	router.DELETE("/api/v1/settings/equipment/:id", h.DeleteEquipment)
}
