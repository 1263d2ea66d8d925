package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helpmesh/support-platform/internal/middleware"
	"github.com/helpmesh/support-platform/internal/model"
	"github.com/helpmesh/support-platform/internal/service"
	"github.com/helpmesh/support-platform/pkg/logger"
)

// TenantHandler handles tenant endpoints.
type TenantHandler struct {
	service *service.TenantService
	logger  *logger.Logger
}

// NewTenantHandler creates a new tenant handler.
func NewTenantHandler(svc *service.TenantService, log *logger.Logger) *TenantHandler {
	return &TenantHandler{service: svc, logger: log}
}

// List handles GET /api/v1/tenants
func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())

	if status := r.URL.Query().Get("status"); status != "" {
		tenants, err := h.service.ListByStatus(r.Context(), p, model.TenantStatus(status))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeResult(w, http.StatusOK, "ok", tenants)
		return
	}

	tenants, err := h.service.List(r.Context(), p)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "ok", tenants)
}

// Get handles GET /api/v1/tenants/{id}
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	tenant, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "ok", tenant)
}

// Create handles POST /api/v1/tenants
func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())

	var req model.CreateTenantRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	tenant, err := h.service.Create(r.Context(), p, &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusCreated, "tenant created", tenant)
}

// CreateWithAdmin handles POST /api/v1/tenants/with-admin
func (h *TenantHandler) CreateWithAdmin(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())

	var req model.CreateTenantWithAdminRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	tenant, admin, err := h.service.CreateWithAdmin(r.Context(), p, &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusCreated, "tenant created", map[string]any{
		"tenant": tenant,
		"admin":  admin,
	})
}

// Update handles PUT /api/v1/tenants/{id}
func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req model.UpdateTenantRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	tenant, err := h.service.Update(r.Context(), p, id, &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "tenant updated", tenant)
}

// Delete handles DELETE /api/v1/tenants/{id}
func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	writeResult(w, http.StatusOK, "tenant deleted", nil)
}
