// Package token issues and validates the signed bearer tokens carrying a
// principal's claims. The issuer is constructed once from configuration and
// injected wherever it is needed; there is no process-wide singleton.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/helpmesh/support-platform/internal/model"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or claim
// validation, including unknown refresh tokens.
var ErrInvalidToken = errors.New("token: invalid token")

// Claims are the JWT claims a bearer token carries.
type Claims struct {
	jwt.RegisteredClaims
	Role     string `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`
}

// RefreshStore persists opaque refresh tokens with a TTL.
type RefreshStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// Config holds the issuer's signing and lifetime settings.
type Config struct {
	Secret        string
	Expiry        time.Duration
	RefreshExpiry time.Duration
}

// Issuer mints and validates bearer tokens and manages refresh tokens.
type Issuer struct {
	cfg     Config
	refresh RefreshStore
}

// NewIssuer creates an issuer from explicit configuration.
func NewIssuer(cfg Config, refresh RefreshStore) *Issuer {
	return &Issuer{cfg: cfg, refresh: refresh}
}

// Issue mints a signed bearer token for the user.
func (i *Issuer) Issue(u *model.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(i.cfg.Expiry)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role:     string(u.Role),
		TenantID: u.TenantID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(i.cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies a bearer token and returns the principal it
// carries.
func (i *Issuer) Validate(tokenString string) (model.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(i.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return model.Principal{}, ErrInvalidToken
	}
	role := model.Role(claims.Role)
	if !role.Valid() {
		return model.Principal{}, ErrInvalidToken
	}
	return model.Principal{
		UserID:   claims.Subject,
		Role:     role,
		TenantID: claims.TenantID,
	}, nil
}

// IssueRefresh mints an opaque refresh token for the user and stores it with
// the configured TTL.
func (i *Issuer) IssueRefresh(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := i.refresh.Save(ctx, token, userID, i.cfg.RefreshExpiry); err != nil {
		return "", err
	}
	return token, nil
}

// RedeemRefresh resolves a refresh token to its user id and rotates it out.
func (i *Issuer) RedeemRefresh(ctx context.Context, token string) (string, error) {
	userID, err := i.refresh.Lookup(ctx, token)
	if err != nil {
		return "", err
	}
	if err := i.refresh.Revoke(ctx, token); err != nil {
		return "", err
	}
	return userID, nil
}

// RevokeRefresh invalidates a refresh token.
func (i *Issuer) RevokeRefresh(ctx context.Context, token string) error {
	return i.refresh.Revoke(ctx, token)
}
