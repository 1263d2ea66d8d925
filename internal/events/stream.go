package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/helpmesh/support-platform/internal/model"
)

const (
	// StreamName is the name of the chat events stream.
	StreamName = "CHAT"

	// SubjectPrefix is the prefix for all chat subjects.
	SubjectPrefix = "chat"
)

// EventType names a chat-session event.
type EventType string

const (
	EventSessionStarted  EventType = "session_started"
	EventMessageAppended EventType = "message_appended"
	EventHumanRequested  EventType = "human_requested"
	EventAgentAssigned   EventType = "agent_assigned"
	EventSessionClosed   EventType = "session_closed"
)

// SessionEvent is the payload published for every session transition and
// message append. The push layer fans these out to the session's tenant group.
type SessionEvent struct {
	Type       EventType          `json:"type"`
	TenantID   string             `json:"tenant_id"`
	SessionID  string             `json:"session_id"`
	State      model.SessionState `json:"state"`
	EmployeeID string             `json:"employee_id,omitempty"`
	Message    *model.ChatMessage `json:"message,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// StreamManager handles JetStream stream operations.
type StreamManager struct {
	client *Client
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client}
}

// EnsureStream ensures the chat stream exists with proper configuration.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	// Check if stream exists
	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil // Stream already exists
	}

	// Create stream
	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Chat session transitions and message appends",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// SessionSubject returns the subject for a session event. Subjects are
// tenant-scoped so the push layer can subscribe per tenant group.
func SessionSubject(tenantID, sessionID string, eventType EventType) string {
	return fmt.Sprintf("%s.%s.%s.%s", SubjectPrefix, tenantID, sessionID, eventType)
}

// TenantFilter returns the filter subject for all events in a tenant.
func TenantFilter(tenantID string) string {
	return fmt.Sprintf("%s.%s.>", SubjectPrefix, tenantID)
}

// Publish publishes a session event to JetStream.
func (m *StreamManager) Publish(ctx context.Context, ev *SessionEvent) error {
	subject := SessionSubject(ev.TenantID, ev.SessionID, ev.Type)

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := m.client.JetStream().Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
