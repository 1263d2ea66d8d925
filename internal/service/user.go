package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helpmesh/support-platform/internal/apperr"
	"github.com/helpmesh/support-platform/internal/authz"
	"github.com/helpmesh/support-platform/internal/middleware"
	"github.com/helpmesh/support-platform/internal/model"
	"github.com/helpmesh/support-platform/internal/quota"
	"github.com/helpmesh/support-platform/internal/store"
	"github.com/helpmesh/support-platform/internal/token"
	"github.com/helpmesh/support-platform/pkg/logger"
	"github.com/helpmesh/support-platform/pkg/metrics"
)

// UserService handles staff user management.
type UserService struct {
	users    UserStore
	tenants  TenantStore
	enforcer *quota.Enforcer
	logger   *logger.Logger
}

// NewUserService creates a new user service.
func NewUserService(users UserStore, tenants TenantStore, enforcer *quota.Enforcer, log *logger.Logger) *UserService {
	return &UserService{users: users, tenants: tenants, enforcer: enforcer, logger: log}
}

// Create provisions a staff user. Admins are auto-scoped to their own tenant;
// the target tenant must be Active; the role's quota must have headroom.
// SuperAdmin accounts can never be created through this path.
func (s *UserService) Create(ctx context.Context, p model.Principal, req *model.CreateUserRequest) (*model.User, error) {
	if !req.Role.Valid() {
		return nil, apperr.Validation("invalid role: %s", req.Role)
	}
	if req.Role == model.RoleSuperAdmin {
		d := authz.Authorize(p, authz.ActionUserCreateSuperAdmin, req.TenantID)
		return nil, denied(p, authz.ActionUserCreateSuperAdmin, d)
	}
	if err := middleware.ValidateEmail(req.Email); err != nil {
		return nil, apperr.Validation("invalid email: %v", err)
	}
	if err := middleware.ValidatePassword(req.Password); err != nil {
		return nil, apperr.Validation("invalid password: %v", err)
	}
	if req.FirstName == "" || req.LastName == "" {
		return nil, apperr.Validation("first and last name are required")
	}

	// Admins create users in their own tenant regardless of the request body.
	if p.Role == model.RoleAdmin {
		req.TenantID = p.TenantID
	}
	if req.TenantID == "" {
		return nil, apperr.Validation("tenant_id is required")
	}

	if d := authz.Authorize(p, authz.ActionUserCreate, req.TenantID); !d.Allowed {
		return nil, denied(p, authz.ActionUserCreate, d)
	}

	tenant, err := s.tenants.Get(ctx, req.TenantID)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("tenant not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load tenant", err)
	}
	if tenant.Status != model.TenantActive {
		return nil, apperr.Validation("cannot create users in a tenant that is %s", strings.ToLower(string(tenant.Status)))
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("a user with email %q already exists", email)
	} else if err != store.ErrNotFound {
		return nil, apperr.Internal("failed to check email", err)
	}

	kind, checked := quota.KindForRole(req.Role)
	if checked {
		if err := s.enforcer.CheckAndReserve(ctx, tenant, kind); err != nil {
			if apperr.KindOf(err) == apperr.KindQuotaExceeded {
				metrics.QuotaDenialsTotal.WithLabelValues(tenant.ID, string(kind)).Inc()
			}
			return nil, err
		}
	}

	hash, err := token.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.Must(uuid.NewV7()).String(),
		TenantID:     req.TenantID,
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		DisplayName:  req.FirstName + " " + req.LastName,
		Email:        email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Department:   req.Department,
		Timezone:     req.Timezone,
		Status:       model.UserActive,
		CreatedBy:    p.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, apperr.Internal("failed to create user", err)
	}
	if err := s.tenants.IncUserCount(ctx, tenant.ID, user.Role, 1); err != nil {
		s.logger.Error("failed to increment tenant user count",
			zap.String("tenant_id", tenant.ID), zap.Error(err))
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("tenant_id", user.TenantID),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// Get returns one user by id. Users outside the caller's tenant are reported
// as absent.
func (s *UserService) Get(ctx context.Context, p model.Principal, id string) (*model.User, error) {
	user, err := s.users.Get(ctx, id)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	if d := authz.Authorize(p, authz.ActionUserRead, user.TenantID); !d.Allowed {
		return nil, deniedAsNotFound(p, authz.ActionUserRead, "user")
	}
	return user, nil
}

// ListAll returns every user across all tenants.
func (s *UserService) ListAll(ctx context.Context, p model.Principal) ([]model.User, error) {
	if d := authz.Authorize(p, authz.ActionUserListAll, p.TenantID); !d.Allowed {
		return nil, denied(p, authz.ActionUserListAll, d)
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	return users, nil
}

// ListByTenant returns the users in one tenant.
func (s *UserService) ListByTenant(ctx context.Context, p model.Principal, tenantID string) ([]model.User, error) {
	if d := authz.Authorize(p, authz.ActionUserList, tenantID); !d.Allowed {
		return nil, denied(p, authz.ActionUserList, d)
	}
	users, err := s.users.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	return users, nil
}

// ListByRole returns the users holding one role across all tenants.
func (s *UserService) ListByRole(ctx context.Context, p model.Principal, role model.Role) ([]model.User, error) {
	if d := authz.Authorize(p, authz.ActionUserListAll, p.TenantID); !d.Allowed {
		return nil, denied(p, authz.ActionUserListAll, d)
	}
	if !role.Valid() {
		return nil, apperr.Validation("invalid role: %s", role)
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	return users, nil
}

// Update modifies a user's profile. A role change between Admin and Employee
// re-checks quota for the new role and moves the tenant's live counters.
func (s *UserService) Update(ctx context.Context, p model.Principal, id string, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.users.Get(ctx, id)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	if d := authz.Authorize(p, authz.ActionUserUpdate, user.TenantID); !d.Allowed {
		return nil, deniedAsNotFound(p, authz.ActionUserUpdate, "user")
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.FirstName != "" || req.LastName != "" {
		user.DisplayName = user.FirstName + " " + user.LastName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Department != "" {
		user.Department = req.Department
	}
	if req.Timezone != "" {
		user.Timezone = req.Timezone
	}

	if req.Role != nil && *req.Role != user.Role {
		if err := s.changeRole(ctx, user, *req.Role); err != nil {
			return nil, err
		}
	}

	if req.Status != nil && *req.Status != user.Status {
		if !req.Status.Valid() {
			return nil, apperr.Validation("invalid user status: %s", *req.Status)
		}
		if *req.Status != model.UserActive {
			if d := authz.AuthorizeSelf(p, user.ID); !d.Allowed {
				return nil, denied(p, authz.ActionUserSetStatus, d)
			}
		}
		user.Status = *req.Status
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Replace(ctx, user); err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to update user", err)
	}
	return user, nil
}

// UpdateStatus toggles a user's account state. Nobody may deactivate their
// own account, regardless of role.
func (s *UserService) UpdateStatus(ctx context.Context, p model.Principal, id string, status model.UserStatus) (*model.User, error) {
	if !status.Valid() {
		return nil, apperr.Validation("invalid user status: %s", status)
	}

	user, err := s.users.Get(ctx, id)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	if d := authz.Authorize(p, authz.ActionUserSetStatus, user.TenantID); !d.Allowed {
		return nil, deniedAsNotFound(p, authz.ActionUserSetStatus, "user")
	}
	if status != model.UserActive {
		if d := authz.AuthorizeSelf(p, user.ID); !d.Allowed {
			return nil, denied(p, authz.ActionUserSetStatus, d)
		}
	}

	user.Status = status
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Replace(ctx, user); err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to update user", err)
	}
	return user, nil
}

// Delete removes a user and releases its quota slot. Nobody may delete their
// own account.
func (s *UserService) Delete(ctx context.Context, p model.Principal, id string) error {
	user, err := s.users.Get(ctx, id)
	if err == store.ErrNotFound {
		return apperr.NotFound("user not found")
	}
	if err != nil {
		return apperr.Internal("failed to load user", err)
	}
	if d := authz.Authorize(p, authz.ActionUserDelete, user.TenantID); !d.Allowed {
		return deniedAsNotFound(p, authz.ActionUserDelete, "user")
	}
	if d := authz.AuthorizeSelf(p, user.ID); !d.Allowed {
		return denied(p, authz.ActionUserDelete, d)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if err == store.ErrNotFound {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal("failed to delete user", err)
	}
	if user.TenantID != "" {
		if err := s.tenants.IncUserCount(ctx, user.TenantID, user.Role, -1); err != nil {
			s.logger.Error("failed to decrement tenant user count",
				zap.String("tenant_id", user.TenantID), zap.Error(err))
		}
	}

	s.logger.Info("user deleted",
		zap.String("user_id", id),
		zap.String("tenant_id", user.TenantID),
	)
	return nil
}

// changeRole moves a user between Admin and Employee, checking the new
// role's quota and shifting the tenant's live counters.
func (s *UserService) changeRole(ctx context.Context, user *model.User, newRole model.Role) error {
	if !newRole.Valid() || newRole == model.RoleSuperAdmin {
		return apperr.Validation("invalid role: %s", newRole)
	}

	tenant, err := s.tenants.Get(ctx, user.TenantID)
	if err == store.ErrNotFound {
		return apperr.NotFound("tenant not found")
	}
	if err != nil {
		return apperr.Internal("failed to load tenant", err)
	}

	kind, checked := quota.KindForRole(newRole)
	if checked {
		if err := s.enforcer.CheckAndReserve(ctx, tenant, kind); err != nil {
			if apperr.KindOf(err) == apperr.KindQuotaExceeded {
				metrics.QuotaDenialsTotal.WithLabelValues(tenant.ID, string(kind)).Inc()
			}
			return err
		}
	}

	oldRole := user.Role
	user.Role = newRole
	if err := s.tenants.IncUserCount(ctx, tenant.ID, oldRole, -1); err != nil {
		s.logger.Error("failed to decrement tenant user count",
			zap.String("tenant_id", tenant.ID), zap.Error(err))
	}
	if err := s.tenants.IncUserCount(ctx, tenant.ID, newRole, 1); err != nil {
		s.logger.Error("failed to increment tenant user count",
			zap.String("tenant_id", tenant.ID), zap.Error(err))
	}
	return nil
}
