package token

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpmesh/support-platform/internal/model"
)

type memStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemStore() *memStore {
	return &memStore{tokens: make(map[string]string)}
}

func (m *memStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = userID
	return nil
}

func (m *memStore) Lookup(ctx context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.tokens[token]
	if !ok {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (m *memStore) Revoke(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

func newTestIssuer() *Issuer {
	return NewIssuer(Config{
		Secret:        "test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	}, newMemStore())
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	issuer := newTestIssuer()
	user := &model.User{ID: "u-1", Role: model.RoleAdmin, TenantID: "t-1"}

	signed, expiresAt, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	p, err := issuer.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "u-1", p.UserID)
	assert.Equal(t, model.RoleAdmin, p.Role)
	assert.Equal(t, "t-1", p.TenantID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	signed, _, err := newTestIssuer().Issue(&model.User{ID: "u-1", Role: model.RoleEmployee, TenantID: "t-1"})
	require.NoError(t, err)

	other := NewIssuer(Config{Secret: "other-secret", Expiry: time.Hour}, newMemStore())
	_, err = other.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := newTestIssuer().Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsUnknownRole(t *testing.T) {
	issuer := newTestIssuer()
	signed, _, err := issuer.Issue(&model.User{ID: "u-1", Role: model.Role("Intern")})
	require.NoError(t, err)

	_, err = issuer.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRotation(t *testing.T) {
	issuer := newTestIssuer()
	ctx := context.Background()

	refresh, err := issuer.IssueRefresh(ctx, "u-1")
	require.NoError(t, err)

	userID, err := issuer.RedeemRefresh(ctx, refresh)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)

	// Redeeming rotates the token out; a second use fails.
	_, err = issuer.RedeemRefresh(ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)

	assert.True(t, VerifyPassword(hash, "correct-horse"))
	assert.False(t, VerifyPassword(hash, "wrong-horse"))
}
