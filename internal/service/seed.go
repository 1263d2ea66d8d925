package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helpmesh/support-platform/internal/model"
	"github.com/helpmesh/support-platform/internal/token"
	"github.com/helpmesh/support-platform/pkg/logger"
)

// Seeder bootstraps the first SuperAdmin account. SuperAdmins cannot be
// created through the API, so an empty deployment gets exactly one seeded
// here.
type Seeder struct {
	users  UserStore
	logger *logger.Logger
}

// NewSeeder creates a new seeder.
func NewSeeder(users UserStore, log *logger.Logger) *Seeder {
	return &Seeder{users: users, logger: log}
}

// EnsureSuperAdmin creates the bootstrap SuperAdmin when the users
// collection is empty. With no configured password the seeder refuses to
// run rather than mint a known-credential account.
func (s *Seeder) EnsureSuperAdmin(ctx context.Context, email, password string) error {
	count, err := s.users.CountAll(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if password == "" {
		s.logger.Warn("users collection is empty but no seed password is configured, skipping superadmin seed")
		return nil
	}

	hash, err := token.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &model.User{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Role:         model.RoleSuperAdmin,
		FirstName:    "Super",
		LastName:     "Admin",
		DisplayName:  "Super Admin",
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Timezone:     "UTC",
		Status:       model.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("seeded bootstrap superadmin",
		zap.String("user_id", admin.ID),
		zap.String("email", admin.Email),
	)
	return nil
}
