package model

import (
	"time"
)

// SessionState is a chat session's lifecycle state. Closed is terminal.
type SessionState string

const (
	SessionActive  SessionState = "Active"
	SessionPending SessionState = "Pending"
	SessionClosed  SessionState = "Closed"
)

// Sender identifies who wrote a chat message.
type Sender string

const (
	SenderCustomer Sender = "Customer"
	SenderBot      Sender = "Bot"
	SenderEmployee Sender = "Employee"
)

// MessageType is the payload kind of a chat message.
type MessageType string

const (
	MessageText  MessageType = "Text"
	MessageImage MessageType = "Image"
	MessageFile  MessageType = "File"
)

// ChatMessage is one entry in a session's append-only message log.
type ChatMessage struct {
	Sender    Sender      `bson:"sender" json:"sender"`
	Text      string      `bson:"text" json:"text"`
	Type      MessageType `bson:"type" json:"type"`
	Timestamp time.Time   `bson:"timestamp" json:"timestamp"`
}

// ChatSession is one customer conversation. Version backs optimistic
// concurrency on full-document replaces.
type ChatSession struct {
	ID                 string        `bson:"_id" json:"id"`
	TenantID           string        `bson:"tenantId" json:"tenant_id"`
	CustomerID         string        `bson:"customerId" json:"customer_id"`
	AssignedEmployeeID string        `bson:"assignedEmployeeId,omitempty" json:"assigned_employee_id,omitempty"`
	State              SessionState  `bson:"state" json:"state"`
	Messages           []ChatMessage `bson:"messages" json:"messages"`
	StartedAt          time.Time     `bson:"startedAt" json:"started_at"`
	EndedAt            *time.Time    `bson:"endedAt,omitempty" json:"ended_at,omitempty"`
	UpdatedAt          time.Time     `bson:"updatedAt" json:"updated_at"`
	Version            int64         `bson:"version" json:"-"`
}

// StartSessionRequest opens a chat session on first customer contact.
type StartSessionRequest struct {
	CustomerID string `json:"customer_id"`
}

// ChatMessageRequest carries a message body from a customer or an agent.
type ChatMessageRequest struct {
	Text string `json:"text"`
}
