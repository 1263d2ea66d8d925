package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helpmesh/support-platform/internal/middleware"
	"github.com/helpmesh/support-platform/internal/model"
	"github.com/helpmesh/support-platform/internal/service"
	"github.com/helpmesh/support-platform/pkg/logger"
)

// FAQHandler handles FAQ endpoints. FAQ routes are nested under a tenant so
// the target tenant is always declared in the path.
type FAQHandler struct {
	service *service.FAQService
	logger  *logger.Logger
}

// NewFAQHandler creates a new FAQ handler.
func NewFAQHandler(svc *service.FAQService, log *logger.Logger) *FAQHandler {
	return &FAQHandler{service: svc, logger: log}
}

// List handles GET /api/v1/tenants/{id}/faqs. The top_level query parameter
// restricts the list to trees rooted at depth 1.
func (h *FAQHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	tenantID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(tenantID); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var (
		faqs []model.FAQNode
		err  error
	)
	if r.URL.Query().Get("top_level") == "true" {
		faqs, err = h.service.ListTopLevel(r.Context(), p, tenantID)
	} else {
		faqs, err = h.service.ListByTenant(r.Context(), p, tenantID)
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "ok", faqs)
}

// Search handles GET /api/v1/tenants/{id}/faqs/search?q=term
func (h *FAQHandler) Search(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	tenantID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(tenantID); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	faqs, err := h.service.Search(r.Context(), p, tenantID, r.URL.Query().Get("q"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "ok", faqs)
}

// Stats handles GET /api/v1/tenants/{id}/faqs/stats
func (h *FAQHandler) Stats(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	tenantID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(tenantID); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	stats, err := h.service.Stats(r.Context(), p, tenantID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "ok", stats)
}

// Get handles GET /api/v1/faqs/{id}
func (h *FAQHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	faq, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "ok", faq)
}

// Create handles POST /api/v1/tenants/{id}/faqs
func (h *FAQHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	tenantID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(tenantID); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req model.CreateFAQRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	faq, err := h.service.Create(r.Context(), p, tenantID, &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusCreated, "FAQ created", faq)
}

// Update handles PUT /api/v1/faqs/{id}
func (h *FAQHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req model.UpdateFAQRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	faq, err := h.service.Update(r.Context(), p, id, &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "FAQ updated", faq)
}

// Delete handles DELETE /api/v1/faqs/{id}
func (h *FAQHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	writeResult(w, http.StatusOK, "FAQ deleted", nil)
}
