package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/helpmesh/support-platform/internal/apperr"
	"github.com/helpmesh/support-platform/internal/middleware"
	"github.com/helpmesh/support-platform/internal/model"
	"github.com/helpmesh/support-platform/internal/store"
	"github.com/helpmesh/support-platform/internal/token"
	"github.com/helpmesh/support-platform/pkg/logger"
)

// AuthService handles staff authentication.
type AuthService struct {
	users  UserStore
	issuer *token.Issuer
	logger *logger.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users UserStore, issuer *token.Issuer, log *logger.Logger) *AuthService {
	return &AuthService{users: users, issuer: issuer, logger: log}
}

// Login verifies staff credentials and returns a token pair. Invalid email
// and invalid password are reported identically.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if err := middleware.ValidateEmail(req.Email); err != nil {
		return nil, apperr.Authentication("invalid email or password")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err == store.ErrNotFound {
		return nil, apperr.Authentication("invalid email or password")
	}
	if err != nil {
		return nil, apperr.Internal("failed to look up user", err)
	}

	if !token.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, apperr.Authentication("invalid email or password")
	}

	if user.Status != model.UserActive {
		return nil, apperr.Authentication("account is not active")
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("tenant_id", user.TenantID),
		zap.String("role", string(user.Role)),
	)
	return resp, nil
}

// Refresh rotates a refresh token and returns a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.AuthResponse, error) {
	userID, err := s.issuer.RedeemRefresh(ctx, refreshToken)
	if err != nil {
		return nil, apperr.Authentication("invalid or expired refresh token")
	}

	user, err := s.users.Get(ctx, userID)
	if err == store.ErrNotFound {
		return nil, apperr.Authentication("invalid or expired refresh token")
	}
	if err != nil {
		return nil, apperr.Internal("failed to look up user", err)
	}

	if user.Status != model.UserActive {
		return nil, apperr.Authentication("account is not active")
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes a refresh token. Revoking an unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.issuer.RevokeRefresh(ctx, refreshToken); err != nil {
		s.logger.Warn("failed to revoke refresh token", zap.Error(err))
	}
	return nil
}

// CurrentUser returns the authenticated caller's own user record.
func (s *AuthService) CurrentUser(ctx context.Context, p model.Principal) (*model.User, error) {
	user, err := s.users.Get(ctx, p.UserID)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to look up user", err)
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*model.AuthResponse, error) {
	signed, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}
	refresh, err := s.issuer.IssueRefresh(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal("failed to issue refresh token", err)
	}
	return &model.AuthResponse{
		User:         user,
		Token:        signed,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}
