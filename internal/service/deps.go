// Package service provides business logic for the support platform. Services
// authorize every operation against the caller's principal, enforce quota on
// creation, and return apperr errors the handler layer maps to HTTP.
package service

import (
	"context"

	"github.com/helpmesh/support-platform/internal/apperr"
	"github.com/helpmesh/support-platform/internal/authz"
	"github.com/helpmesh/support-platform/internal/events"
	"github.com/helpmesh/support-platform/internal/model"
	"github.com/helpmesh/support-platform/pkg/metrics"
)

// TenantStore is the persistence surface for tenants.
type TenantStore interface {
	Insert(ctx context.Context, t *model.Tenant) error
	Get(ctx context.Context, id string) (*model.Tenant, error)
	GetByName(ctx context.Context, name string) (*model.Tenant, error)
	FindByDomain(ctx context.Context, domain string) (*model.Tenant, error)
	List(ctx context.Context) ([]model.Tenant, error)
	ListByStatus(ctx context.Context, status model.TenantStatus) ([]model.Tenant, error)
	Replace(ctx context.Context, t *model.Tenant) error
	Delete(ctx context.Context, id string) error
	IncUserCount(ctx context.Context, id string, role model.Role, delta int) error
}

// UserStore is the persistence surface for staff users.
type UserStore interface {
	Insert(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	ListByTenant(ctx context.Context, tenantID string) ([]model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	Replace(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id string) error
	CountAll(ctx context.Context) (int64, error)
}

// FAQStore is the persistence surface for FAQ trees.
type FAQStore interface {
	Insert(ctx context.Context, f *model.FAQNode) error
	Get(ctx context.Context, id string) (*model.FAQNode, error)
	ListByTenant(ctx context.Context, tenantID string) ([]model.FAQNode, error)
	ListTopLevel(ctx context.Context, tenantID string) ([]model.FAQNode, error)
	Search(ctx context.Context, tenantID, term string) ([]model.FAQNode, error)
	Replace(ctx context.Context, f *model.FAQNode) error
	Delete(ctx context.Context, id, tenantID string) error
	CountByTenant(ctx context.Context, tenantID string) (int64, error)
}

// SessionStore is the persistence surface for chat sessions.
type SessionStore interface {
	Insert(ctx context.Context, sess *model.ChatSession) error
	Get(ctx context.Context, id string) (*model.ChatSession, error)
	ListActiveByTenant(ctx context.Context, tenantID string) ([]model.ChatSession, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]model.ChatSession, error)
	ReplaceVersioned(ctx context.Context, sess *model.ChatSession) error
}

// EventPublisher hands session events to the push channel. Publishing is
// best-effort; failures are logged, never surfaced to the API caller.
type EventPublisher interface {
	Publish(ctx context.Context, ev *events.SessionEvent) error
}

// denied records the denial metric and returns an access-denied error.
func denied(p model.Principal, action authz.Action, d authz.Decision) error {
	metrics.AccessDenialsTotal.WithLabelValues(string(p.Role), string(action)).Inc()
	return apperr.AccessDenied(d.Reason)
}

// deniedAsNotFound records the denial metric and reports the entity as
// absent. Used for lookups by id so existence never leaks across tenants.
func deniedAsNotFound(p model.Principal, action authz.Action, entity string) error {
	metrics.AccessDenialsTotal.WithLabelValues(string(p.Role), string(action)).Inc()
	return apperr.NotFound("%s not found", entity)
}
