package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helpmesh/support-platform/internal/middleware"
	"github.com/helpmesh/support-platform/internal/model"
	"github.com/helpmesh/support-platform/internal/service"
	"github.com/helpmesh/support-platform/pkg/logger"
)

// UserHandler handles staff user endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc *service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: log}
}

// List handles GET /api/v1/users. Optional query parameters narrow the list
// by tenant or role; the unfiltered list is SuperAdmin-only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())

	if tenantID := r.URL.Query().Get("tenant_id"); tenantID != "" {
		users, err := h.service.ListByTenant(r.Context(), p, tenantID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeResult(w, http.StatusOK, "ok", users)
		return
	}
	if role := r.URL.Query().Get("role"); role != "" {
		users, err := h.service.ListByRole(r.Context(), p, model.Role(role))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeResult(w, http.StatusOK, "ok", users)
		return
	}

	users, err := h.service.ListAll(r.Context(), p)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "ok", users)
}

// ListByTenant handles GET /api/v1/tenants/{id}/users
func (h *UserHandler) ListByTenant(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	tenantID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(tenantID); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	users, err := h.service.ListByTenant(r.Context(), p, tenantID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "ok", users)
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	user, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "ok", user)
}

// Create handles POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())

	var req model.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	user, err := h.service.Create(r.Context(), p, &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusCreated, "user created", user)
}

// Update handles PUT /api/v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req model.UpdateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	user, err := h.service.Update(r.Context(), p, id, &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "user updated", user)
}

// UpdateStatus handles PUT /api/v1/users/{id}/status
func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req model.UpdateUserStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	user, err := h.service.UpdateStatus(r.Context(), p, id, req.Status)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "user status updated", user)
}

// Delete handles DELETE /api/v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.service.Delete(r.Context(), p, id); err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "user deleted", nil)
}
