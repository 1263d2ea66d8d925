package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helpmesh/support-platform/internal/apperr"
	"github.com/helpmesh/support-platform/internal/authz"
	"github.com/helpmesh/support-platform/internal/events"
	"github.com/helpmesh/support-platform/internal/middleware"
	"github.com/helpmesh/support-platform/internal/model"
	"github.com/helpmesh/support-platform/internal/store"
	"github.com/helpmesh/support-platform/pkg/logger"
	"github.com/helpmesh/support-platform/pkg/metrics"
)

// BotHandoffMessage is appended when a customer asks for a human agent.
const BotHandoffMessage = "I'm connecting you with a human agent. Please wait a moment..."

// mutateRetries bounds the optimistic-concurrency retry loop on session
// writes.
const mutateRetries = 3

// ChatService handles chat sessions: the customer-facing bot loop and the
// staff-facing hand-off workflow.
type ChatService struct {
	sessions SessionStore
	tenants  TenantStore
	faqs     *FAQService
	events   EventPublisher
	logger   *logger.Logger
}

// NewChatService creates a new chat service.
func NewChatService(sessions SessionStore, tenants TenantStore, faqs *FAQService, publisher EventPublisher, log *logger.Logger) *ChatService {
	return &ChatService{sessions: sessions, tenants: tenants, faqs: faqs, events: publisher, logger: log}
}

// Start opens a chat session for a customer. Sessions begin in the Active
// state with the bot answering.
func (s *ChatService) Start(ctx context.Context, tenantID string, req *model.StartSessionRequest) (*model.ChatSession, error) {
	if req.CustomerID == "" {
		return nil, apperr.Validation("customer_id is required")
	}

	tenant, err := s.tenants.Get(ctx, tenantID)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("tenant not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load tenant", err)
	}
	if tenant.Status != model.TenantActive {
		return nil, apperr.NotFound("tenant not found")
	}

	now := time.Now().UTC()
	sess := &model.ChatSession{
		ID:         uuid.Must(uuid.NewV7()).String(),
		TenantID:   tenantID,
		CustomerID: req.CustomerID,
		State:      model.SessionActive,
		Messages:   []model.ChatMessage{},
		StartedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.sessions.Insert(ctx, sess); err != nil {
		return nil, apperr.Internal("failed to start session", err)
	}

	metrics.ChatSessionsActive.WithLabelValues(tenantID).Inc()
	s.publish(ctx, &events.SessionEvent{
		Type:      events.EventSessionStarted,
		TenantID:  tenantID,
		SessionID: sess.ID,
		State:     sess.State,
		Timestamp: now,
	})
	s.logger.Info("chat session started",
		zap.String("session_id", sess.ID),
		zap.String("tenant_id", tenantID),
	)
	return sess, nil
}

// HandleCustomerMessage appends a customer message followed by the bot's
// reply from the tenant's FAQs. The bot answers in every non-closed state,
// including Pending, where a waiting customer still gets FAQ answers until an
// agent picks the session up.
func (s *ChatService) HandleCustomerMessage(ctx context.Context, tenantID, sessionID string, req *model.ChatMessageRequest) (*model.ChatSession, error) {
	if err := middleware.ValidateMessageText(req.Text); err != nil {
		return nil, apperr.Validation("invalid message: %v", err)
	}

	return s.mutate(ctx, sessionID, func(sess *model.ChatSession) ([]events.SessionEvent, error) {
		if sess.TenantID != tenantID {
			return nil, apperr.NotFound("session not found")
		}
		if sess.State == model.SessionClosed {
			return nil, apperr.Conflict("session is closed")
		}

		now := time.Now().UTC()
		customerMsg := model.ChatMessage{
			Sender:    model.SenderCustomer,
			Text:      req.Text,
			Type:      model.MessageText,
			Timestamp: now,
		}
		sess.Messages = append(sess.Messages, customerMsg)

		evs := []events.SessionEvent{{
			Type:      events.EventMessageAppended,
			TenantID:  tenantID,
			SessionID: sess.ID,
			State:     sess.State,
			Message:   &customerMsg,
			Timestamp: now,
		}}

		answer, _, err := s.faqs.MatchForBot(ctx, tenantID, req.Text)
		if err != nil {
			return nil, err
		}
		botMsg := model.ChatMessage{
			Sender:    model.SenderBot,
			Text:      answer,
			Type:      model.MessageText,
			Timestamp: time.Now().UTC(),
		}
		sess.Messages = append(sess.Messages, botMsg)
		evs = append(evs, events.SessionEvent{
			Type:      events.EventMessageAppended,
			TenantID:  tenantID,
			SessionID: sess.ID,
			State:     sess.State,
			Message:   &botMsg,
			Timestamp: botMsg.Timestamp,
		})

		sess.UpdatedAt = time.Now().UTC()
		return evs, nil
	})
}

// RequestHuman moves an Active session to Pending and posts the hand-off
// message. Requesting again while already Pending is a no-op.
func (s *ChatService) RequestHuman(ctx context.Context, tenantID, sessionID string) (*model.ChatSession, error) {
	return s.mutate(ctx, sessionID, func(sess *model.ChatSession) ([]events.SessionEvent, error) {
		if sess.TenantID != tenantID {
			return nil, apperr.NotFound("session not found")
		}
		if sess.State == model.SessionClosed {
			return nil, apperr.Conflict("session is closed")
		}
		if sess.State == model.SessionPending {
			return nil, nil
		}

		now := time.Now().UTC()
		handoff := model.ChatMessage{
			Sender:    model.SenderBot,
			Text:      BotHandoffMessage,
			Type:      model.MessageText,
			Timestamp: now,
		}
		sess.State = model.SessionPending
		sess.Messages = append(sess.Messages, handoff)
		sess.UpdatedAt = now

		return []events.SessionEvent{{
			Type:      events.EventHumanRequested,
			TenantID:  tenantID,
			SessionID: sess.ID,
			State:     sess.State,
			Message:   &handoff,
			Timestamp: now,
		}}, nil
	})
}

// ActiveSessions returns a tenant's sessions currently in the Active state.
func (s *ChatService) ActiveSessions(ctx context.Context, p model.Principal, tenantID string) ([]model.ChatSession, error) {
	if d := authz.Authorize(p, authz.ActionChatList, tenantID); !d.Allowed {
		return nil, denied(p, authz.ActionChatList, d)
	}
	sessions, err := s.sessions.ListActiveByTenant(ctx, tenantID)
	if err != nil {
		return nil, apperr.Internal("failed to list sessions", err)
	}
	return sessions, nil
}

// SessionsByEmployee returns the sessions assigned to one employee.
// Employees may only list their own; results are confined to the caller's
// tenant unless the caller is SuperAdmin.
func (s *ChatService) SessionsByEmployee(ctx context.Context, p model.Principal, employeeID string) ([]model.ChatSession, error) {
	if d := authz.Authorize(p, authz.ActionChatListOwn, p.TenantID); !d.Allowed {
		return nil, denied(p, authz.ActionChatListOwn, d)
	}
	if p.Role == model.RoleEmployee && employeeID != p.UserID {
		return nil, denied(p, authz.ActionChatListOwn, authz.Deny("employees may only list their own sessions"))
	}

	sessions, err := s.sessions.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperr.Internal("failed to list sessions", err)
	}
	if p.Role == model.RoleSuperAdmin {
		return sessions, nil
	}
	scoped := sessions[:0]
	for _, sess := range sessions {
		if sess.TenantID == p.TenantID {
			scoped = append(scoped, sess)
		}
	}
	return scoped, nil
}

// Get returns one session by id. Sessions outside the caller's tenant are
// reported as absent.
func (s *ChatService) Get(ctx context.Context, p model.Principal, id string) (*model.ChatSession, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("session not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load session", err)
	}
	if d := authz.Authorize(p, authz.ActionChatRead, sess.TenantID); !d.Allowed {
		return nil, deniedAsNotFound(p, authz.ActionChatRead, "session")
	}
	return sess, nil
}

// Assign attaches an agent to a session and puts it in the Active state. A
// Pending hand-off is picked up; an already-Active session is reassigned.
// Employees always assign themselves.
func (s *ChatService) Assign(ctx context.Context, p model.Principal, sessionID, employeeID string) (*model.ChatSession, error) {
	if employeeID == "" {
		employeeID = p.UserID
	}
	if p.Role == model.RoleEmployee && employeeID != p.UserID {
		return nil, denied(p, authz.ActionChatAssign, authz.Deny("employees may only assign sessions to themselves"))
	}

	return s.mutate(ctx, sessionID, func(sess *model.ChatSession) ([]events.SessionEvent, error) {
		if d := authz.Authorize(p, authz.ActionChatAssign, sess.TenantID); !d.Allowed {
			return nil, deniedAsNotFound(p, authz.ActionChatAssign, "session")
		}
		if sess.State == model.SessionClosed {
			return nil, apperr.Conflict("session is closed")
		}

		now := time.Now().UTC()
		sess.State = model.SessionActive
		sess.AssignedEmployeeID = employeeID
		sess.UpdatedAt = now

		return []events.SessionEvent{{
			Type:       events.EventAgentAssigned,
			TenantID:   sess.TenantID,
			SessionID:  sess.ID,
			State:      sess.State,
			EmployeeID: employeeID,
			Timestamp:  now,
		}}, nil
	})
}

// SaveAgentMessage appends an agent reply to an assigned session.
func (s *ChatService) SaveAgentMessage(ctx context.Context, p model.Principal, sessionID string, req *model.ChatMessageRequest) (*model.ChatSession, error) {
	if err := middleware.ValidateMessageText(req.Text); err != nil {
		return nil, apperr.Validation("invalid message: %v", err)
	}

	return s.mutate(ctx, sessionID, func(sess *model.ChatSession) ([]events.SessionEvent, error) {
		if d := authz.Authorize(p, authz.ActionChatMessage, sess.TenantID); !d.Allowed {
			return nil, deniedAsNotFound(p, authz.ActionChatMessage, "session")
		}
		if sess.State == model.SessionClosed {
			return nil, apperr.Conflict("session is closed")
		}
		if sess.AssignedEmployeeID == "" {
			return nil, apperr.Conflict("session has no assigned agent")
		}
		if p.Role == model.RoleEmployee && sess.AssignedEmployeeID != p.UserID {
			return nil, denied(p, authz.ActionChatMessage, authz.Deny("session is assigned to another agent"))
		}

		now := time.Now().UTC()
		msg := model.ChatMessage{
			Sender:    model.SenderEmployee,
			Text:      req.Text,
			Type:      model.MessageText,
			Timestamp: now,
		}
		sess.Messages = append(sess.Messages, msg)
		sess.UpdatedAt = now

		return []events.SessionEvent{{
			Type:      events.EventMessageAppended,
			TenantID:  sess.TenantID,
			SessionID: sess.ID,
			State:     sess.State,
			Message:   &msg,
			Timestamp: now,
		}}, nil
	})
}

// Close ends a session. Closed is terminal; closing an already-closed
// session is a no-op.
func (s *ChatService) Close(ctx context.Context, p model.Principal, sessionID string) (*model.ChatSession, error) {
	return s.mutate(ctx, sessionID, func(sess *model.ChatSession) ([]events.SessionEvent, error) {
		if d := authz.Authorize(p, authz.ActionChatClose, sess.TenantID); !d.Allowed {
			return nil, deniedAsNotFound(p, authz.ActionChatClose, "session")
		}
		if sess.State == model.SessionClosed {
			return nil, nil
		}

		now := time.Now().UTC()
		sess.State = model.SessionClosed
		sess.EndedAt = &now
		sess.UpdatedAt = now

		return []events.SessionEvent{{
			Type:      events.EventSessionClosed,
			TenantID:  sess.TenantID,
			SessionID: sess.ID,
			State:     sess.State,
			Timestamp: now,
		}}, nil
	})
}

// mutate runs a read-modify-write cycle against a session with optimistic
// concurrency. On a version conflict the session is re-read and fn re-applied
// against the fresh document. Events returned by fn are published only after
// the write sticks. Returning no events with no error is a no-op: the
// session is not written back.
func (s *ChatService) mutate(ctx context.Context, sessionID string, fn func(*model.ChatSession) ([]events.SessionEvent, error)) (*model.ChatSession, error) {
	for attempt := 0; attempt < mutateRetries; attempt++ {
		sess, err := s.sessions.Get(ctx, sessionID)
		if err == store.ErrNotFound {
			return nil, apperr.NotFound("session not found")
		}
		if err != nil {
			return nil, apperr.Internal("failed to load session", err)
		}

		evs, err := fn(sess)
		if err != nil {
			return nil, err
		}
		if len(evs) == 0 {
			return sess, nil
		}

		err = s.sessions.ReplaceVersioned(ctx, sess)
		if err == store.ErrVersionConflict {
			continue
		}
		if err == store.ErrNotFound {
			return nil, apperr.NotFound("session not found")
		}
		if err != nil {
			return nil, apperr.Internal("failed to save session", err)
		}

		for i := range evs {
			recordSessionEvent(&evs[i])
			s.publish(ctx, &evs[i])
		}
		return sess, nil
	}
	return nil, apperr.Conflict("session was modified concurrently, please retry")
}

// recordSessionEvent updates chat metrics for one committed event. Metrics
// are applied here rather than in the mutate callbacks because a callback
// re-runs on version conflict and would count twice.
func recordSessionEvent(ev *events.SessionEvent) {
	switch ev.Type {
	case events.EventSessionClosed:
		metrics.ChatSessionsActive.WithLabelValues(ev.TenantID).Dec()
	default:
		if ev.Message != nil {
			metrics.ChatMessagesTotal.WithLabelValues(ev.TenantID, string(ev.Message.Sender)).Inc()
		}
	}
}

// publish hands an event to the push channel. Failures are logged, never
// surfaced: the session write already succeeded.
func (s *ChatService) publish(ctx context.Context, ev *events.SessionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Error("failed to publish session event",
			zap.String("session_id", ev.SessionID),
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(ev.Type)).Inc()
}
