package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helpmesh/support-platform/internal/middleware"
	"github.com/helpmesh/support-platform/internal/model"
	"github.com/helpmesh/support-platform/internal/service"
	"github.com/helpmesh/support-platform/pkg/logger"
)

// ChatHandler handles chat endpoints. Customer endpoints are public and
// tenant-addressed; staff endpoints require an authenticated principal.
type ChatHandler struct {
	service *service.ChatService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{service: svc, logger: log}
}

// Start handles POST /api/v1/public/tenants/{id}/chat/sessions
func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(tenantID); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req model.StartSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	sess, err := h.service.Start(r.Context(), tenantID, &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusCreated, "session started", sess)
}

// CustomerMessage handles POST /api/v1/public/tenants/{id}/chat/sessions/{sessionID}/messages
func (h *ChatHandler) CustomerMessage(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "id")
	sessionID := chi.URLParam(r, "sessionID")
	if err := middleware.ValidateID(tenantID); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := middleware.ValidateID(sessionID); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req model.ChatMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	sess, err := h.service.HandleCustomerMessage(r.Context(), tenantID, sessionID, &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "message sent", sess)
}

// RequestHuman handles POST /api/v1/public/tenants/{id}/chat/sessions/{sessionID}/request-human
func (h *ChatHandler) RequestHuman(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "id")
	sessionID := chi.URLParam(r, "sessionID")
	if err := middleware.ValidateID(tenantID); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := middleware.ValidateID(sessionID); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	sess, err := h.service.RequestHuman(r.Context(), tenantID, sessionID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "human agent requested", sess)
}

// ActiveSessions handles GET /api/v1/tenants/{id}/chat/sessions
func (h *ChatHandler) ActiveSessions(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	tenantID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(tenantID); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	sessions, err := h.service.ActiveSessions(r.Context(), p, tenantID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "ok", sessions)
}

// MySessions handles GET /api/v1/chat/sessions/mine
func (h *ChatHandler) MySessions(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())

	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		employeeID = p.UserID
	}

	sessions, err := h.service.SessionsByEmployee(r.Context(), p, employeeID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "ok", sessions)
}

// Get handles GET /api/v1/chat/sessions/{id}
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	sess, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "ok", sess)
}

// Assign handles POST /api/v1/chat/sessions/{id}/assign
func (h *ChatHandler) Assign(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req struct {
		EmployeeID string `json:"employee_id"`
	}
	// An empty body means self-assignment.
	_ = decodeBody(r, &req)

	sess, err := h.service.Assign(r.Context(), p, id, req.EmployeeID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "agent assigned", sess)
}

// AgentMessage handles POST /api/v1/chat/sessions/{id}/messages
func (h *ChatHandler) AgentMessage(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req model.ChatMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	sess, err := h.service.SaveAgentMessage(r.Context(), p, id, &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "message sent", sess)
}

// Close handles POST /api/v1/chat/sessions/{id}/close
func (h *ChatHandler) Close(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateID(id); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	sess, err := h.service.Close(r.Context(), p, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeResult(w, http.StatusOK, "session closed", sess)
}
