package service_test

import (
	"context"
	"sync"

	"github.com/helpmesh/support-platform/internal/events"
	"github.com/helpmesh/support-platform/internal/model"
	"github.com/helpmesh/support-platform/internal/store"
)

// In-memory store fakes for unit tests. They mirror the Mongo stores'
// contracts, including the ErrNotFound and ErrVersionConflict sentinels.

type fakeTenantStore struct {
	mu      sync.Mutex
	tenants map[string]*model.Tenant
}

func newFakeTenantStore() *fakeTenantStore {
	return &fakeTenantStore{tenants: make(map[string]*model.Tenant)}
}

func (f *fakeTenantStore) Insert(ctx context.Context, t *model.Tenant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.tenants[t.ID] = &cp
	return nil
}

func (f *fakeTenantStore) Get(ctx context.Context, id string) (*model.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tenants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTenantStore) GetByName(ctx context.Context, name string) (*model.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tenants {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeTenantStore) FindByDomain(ctx context.Context, domain string) (*model.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tenants {
		for _, d := range t.Domains {
			if d == domain {
				cp := *t
				return &cp, nil
			}
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeTenantStore) List(ctx context.Context) ([]model.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Tenant, 0, len(f.tenants))
	for _, t := range f.tenants {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTenantStore) ListByStatus(ctx context.Context, status model.TenantStatus) ([]model.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Tenant
	for _, t := range f.tenants {
		if t.Status == status {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTenantStore) Replace(ctx context.Context, t *model.Tenant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tenants[t.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *t
	f.tenants[t.ID] = &cp
	return nil
}

func (f *fakeTenantStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tenants[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.tenants, id)
	return nil
}

func (f *fakeTenantStore) IncUserCount(ctx context.Context, id string, role model.Role, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tenants[id]
	if !ok {
		return store.ErrNotFound
	}
	switch role {
	case model.RoleAdmin:
		t.AdminCount += delta
	case model.RoleEmployee:
		t.EmployeeCount += delta
	}
	return nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) Insert(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) Get(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) ListAll(ctx context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) ListByTenant(ctx context.Context, tenantID string) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		if u.TenantID == tenantID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) Replace(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) CountAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

type fakeFAQStore struct {
	mu   sync.Mutex
	faqs map[string]*model.FAQNode
}

func newFakeFAQStore() *fakeFAQStore {
	return &fakeFAQStore{faqs: make(map[string]*model.FAQNode)}
}

func (f *fakeFAQStore) Insert(ctx context.Context, n *model.FAQNode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	f.faqs[n.ID] = &cp
	return nil
}

func (f *fakeFAQStore) Get(ctx context.Context, id string) (*model.FAQNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.faqs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeFAQStore) ListByTenant(ctx context.Context, tenantID string) ([]model.FAQNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.FAQNode
	for _, n := range f.faqs {
		if n.TenantID == tenantID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeFAQStore) ListTopLevel(ctx context.Context, tenantID string) ([]model.FAQNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.FAQNode
	for _, n := range f.faqs {
		if n.TenantID == tenantID && n.Depth == 1 {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeFAQStore) Search(ctx context.Context, tenantID, term string) ([]model.FAQNode, error) {
	return f.ListByTenant(ctx, tenantID)
}

func (f *fakeFAQStore) Replace(ctx context.Context, n *model.FAQNode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.faqs[n.ID]
	if !ok || existing.TenantID != n.TenantID {
		return store.ErrNotFound
	}
	cp := *n
	f.faqs[n.ID] = &cp
	return nil
}

func (f *fakeFAQStore) Delete(ctx context.Context, id, tenantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.faqs[id]
	if !ok || existing.TenantID != tenantID {
		return store.ErrNotFound
	}
	delete(f.faqs, id)
	return nil
}

func (f *fakeFAQStore) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, faq := range f.faqs {
		if faq.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.ChatSession

	// conflicts simulates a concurrent writer: while positive, each
	// ReplaceVersioned bumps the stored version and fails with
	// ErrVersionConflict, forcing the caller's retry path.
	conflicts int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*model.ChatSession)}
}

func (f *fakeSessionStore) Insert(ctx context.Context, sess *model.ChatSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *sess
	f.sessions[sess.ID] = &cp
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, id string) (*model.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sess
	cp.Messages = append([]model.ChatMessage(nil), sess.Messages...)
	return &cp, nil
}

func (f *fakeSessionStore) ListActiveByTenant(ctx context.Context, tenantID string) ([]model.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ChatSession
	for _, sess := range f.sessions {
		if sess.TenantID == tenantID && sess.State == model.SessionActive {
			out = append(out, *sess)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) ListByEmployee(ctx context.Context, employeeID string) ([]model.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ChatSession
	for _, sess := range f.sessions {
		if sess.AssignedEmployeeID == employeeID {
			out = append(out, *sess)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) ReplaceVersioned(ctx context.Context, sess *model.ChatSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.sessions[sess.ID]
	if !ok {
		return store.ErrNotFound
	}
	if f.conflicts > 0 {
		f.conflicts--
		existing.Version++
		return store.ErrVersionConflict
	}
	if existing.Version != sess.Version {
		return store.ErrVersionConflict
	}
	sess.Version++
	cp := *sess
	cp.Messages = append([]model.ChatMessage(nil), sess.Messages...)
	f.sessions[sess.ID] = &cp
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []events.SessionEvent
}

func (f *fakePublisher) Publish(ctx context.Context, ev *events.SessionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *ev)
	return nil
}

func (f *fakePublisher) types() []events.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.EventType, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Type)
	}
	return out
}
