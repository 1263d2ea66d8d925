package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helpmesh/support-platform/internal/apperr"
	"github.com/helpmesh/support-platform/internal/authz"
	"github.com/helpmesh/support-platform/internal/middleware"
	"github.com/helpmesh/support-platform/internal/model"
	"github.com/helpmesh/support-platform/internal/quota"
	"github.com/helpmesh/support-platform/internal/store"
	"github.com/helpmesh/support-platform/pkg/logger"
)

// TenantService handles tenant lifecycle operations.
type TenantService struct {
	tenants TenantStore
	users   *UserService
	logger  *logger.Logger
}

// NewTenantService creates a new tenant service.
func NewTenantService(tenants TenantStore, users *UserService, log *logger.Logger) *TenantService {
	return &TenantService{tenants: tenants, users: users, logger: log}
}

// List returns every tenant.
func (s *TenantService) List(ctx context.Context, p model.Principal) ([]model.Tenant, error) {
	if d := authz.Authorize(p, authz.ActionTenantList, p.TenantID); !d.Allowed {
		return nil, denied(p, authz.ActionTenantList, d)
	}
	tenants, err := s.tenants.List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list tenants", err)
	}
	return tenants, nil
}

// ListByStatus returns the tenants in the given lifecycle state.
func (s *TenantService) ListByStatus(ctx context.Context, p model.Principal, status model.TenantStatus) ([]model.Tenant, error) {
	if d := authz.Authorize(p, authz.ActionTenantList, p.TenantID); !d.Allowed {
		return nil, denied(p, authz.ActionTenantList, d)
	}
	if !status.Valid() {
		return nil, apperr.Validation("invalid tenant status: %s", status)
	}
	tenants, err := s.tenants.ListByStatus(ctx, status)
	if err != nil {
		return nil, apperr.Internal("failed to list tenants", err)
	}
	return tenants, nil
}

// Get returns one tenant by id. Tenants outside the caller's scope are
// reported as absent.
func (s *TenantService) Get(ctx context.Context, p model.Principal, id string) (*model.Tenant, error) {
	if d := authz.Authorize(p, authz.ActionTenantRead, id); !d.Allowed {
		return nil, deniedAsNotFound(p, authz.ActionTenantRead, "tenant")
	}
	tenant, err := s.tenants.Get(ctx, id)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("tenant not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load tenant", err)
	}
	return tenant, nil
}

// Create registers a new tenant. Name and every domain must be globally
// unique; limits are derived from the subscription tier.
func (s *TenantService) Create(ctx context.Context, p model.Principal, req *model.CreateTenantRequest) (*model.Tenant, error) {
	if d := authz.Authorize(p, authz.ActionTenantCreate, p.TenantID); !d.Allowed {
		return nil, denied(p, authz.ActionTenantCreate, d)
	}
	if err := middleware.ValidateName(req.Name); err != nil {
		return nil, apperr.Validation("invalid tenant name: %v", err)
	}
	if !req.Tier.Valid() {
		return nil, apperr.Validation("invalid subscription tier: %s", req.Tier)
	}

	if _, err := s.tenants.GetByName(ctx, req.Name); err == nil {
		return nil, apperr.Conflict("a tenant named %q already exists", req.Name)
	} else if err != store.ErrNotFound {
		return nil, apperr.Internal("failed to check tenant name", err)
	}
	for _, domain := range req.Domains {
		if _, err := s.tenants.FindByDomain(ctx, domain); err == nil {
			return nil, apperr.Conflict("domain %q is already registered", domain)
		} else if err != store.ErrNotFound {
			return nil, apperr.Internal("failed to check tenant domain", err)
		}
	}

	now := time.Now().UTC()
	tenant := &model.Tenant{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Name:      req.Name,
		Kind:      req.Kind,
		Tier:      req.Tier,
		Limits:    quota.LimitsForTier(req.Tier),
		Status:    model.TenantActive,
		Domains:   req.Domains,
		CreatedBy: p.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tenants.Insert(ctx, tenant); err != nil {
		return nil, apperr.Internal("failed to create tenant", err)
	}

	s.logger.Info("tenant created",
		zap.String("tenant_id", tenant.ID),
		zap.String("name", tenant.Name),
		zap.String("tier", string(tenant.Tier)),
	)
	return tenant, nil
}

// CreateWithAdmin registers a tenant together with its first admin in one
// call. A failed admin creation rolls the tenant back.
func (s *TenantService) CreateWithAdmin(ctx context.Context, p model.Principal, req *model.CreateTenantWithAdminRequest) (*model.Tenant, *model.User, error) {
	tenant, err := s.Create(ctx, p, &req.Tenant)
	if err != nil {
		return nil, nil, err
	}

	adminReq := req.Admin
	adminReq.Role = model.RoleAdmin
	adminReq.TenantID = tenant.ID
	admin, err := s.users.Create(ctx, p, &adminReq)
	if err != nil {
		if delErr := s.tenants.Delete(ctx, tenant.ID); delErr != nil {
			s.logger.Error("failed to roll back tenant after admin creation failure",
				zap.String("tenant_id", tenant.ID), zap.Error(delErr))
		}
		return nil, nil, err
	}
	return tenant, admin, nil
}

// Update modifies a tenant. A tier change recomputes limits but never evicts
// resources already over the new ceiling.
func (s *TenantService) Update(ctx context.Context, p model.Principal, id string, req *model.UpdateTenantRequest) (*model.Tenant, error) {
	if d := authz.Authorize(p, authz.ActionTenantUpdate, id); !d.Allowed {
		return nil, deniedAsNotFound(p, authz.ActionTenantUpdate, "tenant")
	}

	tenant, err := s.tenants.Get(ctx, id)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("tenant not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load tenant", err)
	}

	if req.Name != "" && req.Name != tenant.Name {
		if err := middleware.ValidateName(req.Name); err != nil {
			return nil, apperr.Validation("invalid tenant name: %v", err)
		}
		if _, err := s.tenants.GetByName(ctx, req.Name); err == nil {
			return nil, apperr.Conflict("a tenant named %q already exists", req.Name)
		} else if err != store.ErrNotFound {
			return nil, apperr.Internal("failed to check tenant name", err)
		}
		tenant.Name = req.Name
	}
	if req.Kind != "" {
		tenant.Kind = req.Kind
	}
	if req.Tier != nil && *req.Tier != tenant.Tier {
		if !req.Tier.Valid() {
			return nil, apperr.Validation("invalid subscription tier: %s", *req.Tier)
		}
		tenant.Tier = *req.Tier
		tenant.Limits = quota.LimitsForTier(tenant.Tier)
	}
	if req.Domains != nil {
		for _, domain := range req.Domains {
			owner, err := s.tenants.FindByDomain(ctx, domain)
			if err == nil && owner.ID != tenant.ID {
				return nil, apperr.Conflict("domain %q is already registered", domain)
			}
			if err != nil && err != store.ErrNotFound {
				return nil, apperr.Internal("failed to check tenant domain", err)
			}
		}
		tenant.Domains = req.Domains
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperr.Validation("invalid tenant status: %s", *req.Status)
		}
		tenant.Status = *req.Status
	}
	tenant.UpdatedAt = time.Now().UTC()

	if err := s.tenants.Replace(ctx, tenant); err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NotFound("tenant not found")
		}
		return nil, apperr.Internal("failed to update tenant", err)
	}
	return tenant, nil
}

// Delete removes a tenant. Users, FAQs and sessions owned by the tenant are
// not cascaded; they become unreachable through tenant-scoped routes.
func (s *TenantService) Delete(ctx context.Context, p model.Principal, id string) error {
	if d := authz.Authorize(p, authz.ActionTenantDelete, id); !d.Allowed {
		return denied(p, authz.ActionTenantDelete, d)
	}
	err := s.tenants.Delete(ctx, id)
	if err == store.ErrNotFound {
		return apperr.NotFound("tenant not found")
	}
	if err != nil {
		return apperr.Internal("failed to delete tenant", err)
	}
	s.logger.Info("tenant deleted", zap.String("tenant_id", id))
	return nil
}
