package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"printhub/internal/auth/service"
	httputil "printhub/pkg/http"
	"printhub/pkg/logger"
	"printhub/pkg/middleware"
	"printhub/pkg/model"
)

// PublicRoutes lists the endpoints reachable without a bearer token.
var PublicRoutes = []middleware.PublicRoute{
	{Method: http.MethodPost, Prefix: "/api/v1/auth/"},
	{Method: http.MethodGet, Prefix: "/api/v1/auth/confirm"},
}

type AuthHandler struct {
	service service.AuthService
	log     *logger.Logger
}

func NewAuthHandler(service service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SignUpRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SignUp", err)
		return
	}

	result, err := h.service.SignUp(r.Context(), &req)
	if err != nil {
		h.writeError(w, "SignUp", err)
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "SignUp", "operation", "WriteCreated", "error", err)
	}
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SignInRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SignIn", err)
		return
	}

	session, err := h.service.SignIn(r.Context(), &req)
	if err != nil {
		h.writeError(w, "SignIn", err)
		return
	}
	h.writeSuccess(w, "SignIn", session)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req refreshRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Refresh", err)
		return
	}

	session, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(w, "Refresh", err)
		return
	}
	h.writeSuccess(w, "Refresh", session)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req refreshRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.log.Warn("sign out without a readable body", "error", err)
	}

	h.service.SignOut(r.Context(), req.RefreshToken)
	httputil.WriteNoContent(w)
}

func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := h.service.ConfirmEmail(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.writeError(w, "ConfirmEmail", err)
		return
	}
	h.writeSuccess(w, "ConfirmEmail", session)
}

func (h *AuthHandler) writeSuccess(w http.ResponseWriter, op string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", op, "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/signup", h.SignUp)
	router.POST("/api/v1/auth/signin", h.SignIn)
	router.POST("/api/v1/auth/refresh", h.Refresh)
	router.POST("/api/v1/auth/signout", h.SignOut)
	router.GET("/api/v1/auth/confirm", h.ConfirmEmail)
}
