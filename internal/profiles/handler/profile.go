package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"printhub/internal/profiles/service"
	apperrors "printhub/pkg/errors"
	httputil "printhub/pkg/http"
	"printhub/pkg/logger"
	"printhub/pkg/model"
)

const avatarMemory = 2 << 20

type ProfileHandler struct {
	service service.ProfileService
	log     *logger.Logger
}

func NewProfileHandler(service service.ProfileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		log:     log,
	}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	profile, err := h.service.Get(r.Context(), caller.UserID)
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}
	h.writeSuccess(w, "Get", profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var update model.ProfileUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	profile, err := h.service.Update(r.Context(), caller.UserID, &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	h.writeSuccess(w, "Update", profile)
}

func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "UploadAvatar", err)
		return
	}

	if err := r.ParseMultipartForm(avatarMemory); err != nil {
		h.writeError(w, "UploadAvatar", apperrors.InvalidInput("Expected a multipart form with an avatar field"))
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		h.writeError(w, "UploadAvatar", apperrors.InvalidInput("avatar is required"))
		return
	}
	defer file.Close()

	profile, err := h.service.UploadAvatar(r.Context(), caller.UserID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.writeError(w, "UploadAvatar", err)
		return
	}
	h.writeSuccess(w, "UploadAvatar", profile)
}

func (h *ProfileHandler) AvatarURL(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "AvatarURL", err)
		return
	}

	url, err := h.service.AvatarURL(r.Context(), caller.UserID)
	if err != nil {
		h.writeError(w, "AvatarURL", err)
		return
	}
	h.writeSuccess(w, "AvatarURL", map[string]string{"url": url})
}

func (h *ProfileHandler) writeSuccess(w http.ResponseWriter, op string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", op, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ProfileHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ProfileHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/profile", h.Get)
	router.PATCH("/api/v1/profile", h.Update)
	router.PUT("/api/v1/profile/avatar", h.UploadAvatar)
	router.GET("/api/v1/profile/avatar", h.AvatarURL)
}
