package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/helpmesh/support-platform/internal/model"
	"github.com/helpmesh/support-platform/internal/quota"
	"github.com/helpmesh/support-platform/internal/service"
	"github.com/helpmesh/support-platform/internal/token"
	"github.com/helpmesh/support-platform/pkg/logger"
)

// memRefreshStore keeps refresh tokens in a map for tests.
type memRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemRefreshStore() *memRefreshStore {
	return &memRefreshStore{tokens: make(map[string]string)}
}

func (m *memRefreshStore) Save(ctx context.Context, tok, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tok] = userID
	return nil
}

func (m *memRefreshStore) Lookup(ctx context.Context, tok string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.tokens[tok]
	if !ok {
		return "", token.ErrInvalidToken
	}
	return userID, nil
}

func (m *memRefreshStore) Revoke(ctx context.Context, tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, tok)
	return nil
}

// env wires the full service layer over in-memory fakes.
type env struct {
	tenants  *fakeTenantStore
	users    *fakeUserStore
	faqs     *fakeFAQStore
	sessions *fakeSessionStore
	pub      *fakePublisher

	authSvc   *service.AuthService
	userSvc   *service.UserService
	tenantSvc *service.TenantService
	faqSvc    *service.FAQService
	chatSvc   *service.ChatService
}

func newEnv() *env {
	e := &env{
		tenants:  newFakeTenantStore(),
		users:    newFakeUserStore(),
		faqs:     newFakeFAQStore(),
		sessions: newFakeSessionStore(),
		pub:      &fakePublisher{},
	}

	log := logger.NewNop()
	enforcer := quota.NewEnforcer(e.faqs)
	issuer := token.NewIssuer(token.Config{
		Secret:        "test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	}, newMemRefreshStore())

	e.authSvc = service.NewAuthService(e.users, issuer, log)
	e.userSvc = service.NewUserService(e.users, e.tenants, enforcer, log)
	e.tenantSvc = service.NewTenantService(e.tenants, e.userSvc, log)
	e.faqSvc = service.NewFAQService(e.faqs, e.tenants, enforcer, log)
	e.chatSvc = service.NewChatService(e.sessions, e.tenants, e.faqSvc, e.pub, log)
	return e
}

func (e *env) seedTenant(name string, tier model.SubscriptionTier) *model.Tenant {
	now := time.Now().UTC()
	t := &model.Tenant{
		ID:        uuid.NewString(),
		Name:      name,
		Tier:      tier,
		Limits:    quota.LimitsForTier(tier),
		Status:    model.TenantActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_ = e.tenants.Insert(context.Background(), t)
	return t
}

func (e *env) seedUser(tenantID string, role model.Role) *model.User {
	now := time.Now().UTC()
	u := &model.User{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Role:      role,
		FirstName: "Test",
		LastName:  "User",
		Email:     uuid.NewString() + "@example.com",
		Status:    model.UserActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_ = e.users.Insert(context.Background(), u)
	return u
}

func principalFor(u *model.User) model.Principal {
	return model.Principal{UserID: u.ID, Role: u.Role, TenantID: u.TenantID}
}

func superAdmin() model.Principal {
	return model.Principal{UserID: uuid.NewString(), Role: model.RoleSuperAdmin}
}
