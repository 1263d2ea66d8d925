package handler

import (
	"net/http"

	"github.com/helpmesh/support-platform/internal/middleware"
	"github.com/helpmesh/support-platform/internal/model"
	"github.com/helpmesh/support-platform/internal/service"
	"github.com/helpmesh/support-platform/pkg/logger"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	service *service.AuthService
	logger  *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(svc *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: log}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "login successful", resp)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "token refreshed", resp)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "logged out", nil)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	user, err := h.service.CurrentUser(r.Context(), p)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "ok", user)
}
