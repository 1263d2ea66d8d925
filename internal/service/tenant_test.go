package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpmesh/support-platform/internal/apperr"
	"github.com/helpmesh/support-platform/internal/model"
)

func TestTenantCreateDerivesLimitsFromTier(t *testing.T) {
	e := newEnv()

	tenant, err := e.tenantSvc.Create(context.Background(), superAdmin(), &model.CreateTenantRequest{
		Name: "acme",
		Tier: model.TierPro,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TenantActive, tenant.Status)
	assert.Equal(t, 3, tenant.Limits.MaxAdmins)
	assert.Equal(t, 25, tenant.Limits.MaxEmployees)
	assert.Equal(t, 100, tenant.Limits.MaxFAQs)
	assert.Equal(t, 500, tenant.Limits.MaxChatSessions)
}

func TestTenantCreateRejectsDuplicateNameAndDomain(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_, err := e.tenantSvc.Create(ctx, superAdmin(), &model.CreateTenantRequest{
		Name:    "acme",
		Tier:    model.TierBasic,
		Domains: []string{"acme.com"},
	})
	require.NoError(t, err)

	_, err = e.tenantSvc.Create(ctx, superAdmin(), &model.CreateTenantRequest{
		Name: "acme",
		Tier: model.TierBasic,
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = e.tenantSvc.Create(ctx, superAdmin(), &model.CreateTenantRequest{
		Name:    "emca",
		Tier:    model.TierBasic,
		Domains: []string{"acme.com"},
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestTenantCreateRequiresSuperAdmin(t *testing.T) {
	e := newEnv()
	home := e.seedTenant("home", model.TierPro)
	admin := e.seedUser(home.ID, model.RoleAdmin)

	_, err := e.tenantSvc.Create(context.Background(), principalFor(admin), &model.CreateTenantRequest{
		Name: "rogue",
		Tier: model.TierBasic,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))
}

func TestTenantTierChangeRecomputesLimitsKeepsOverage(t *testing.T) {
	e := newEnv()
	tenant := e.seedTenant("acme", model.TierPremium)
	tenant.AdminCount = 5
	require.NoError(t, e.tenants.Replace(context.Background(), tenant))

	downgrade := model.TierBasic
	updated, err := e.tenantSvc.Update(context.Background(), superAdmin(), tenant.ID, &model.UpdateTenantRequest{
		Tier: &downgrade,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Limits.MaxAdmins)
	// Existing over-limit admins survive the downgrade; only new creations
	// are blocked.
	assert.Equal(t, 5, updated.AdminCount)
}

func TestTenantGetCrossTenantReportsNotFound(t *testing.T) {
	e := newEnv()
	home := e.seedTenant("home", model.TierPro)
	other := e.seedTenant("other", model.TierPro)
	admin := e.seedUser(home.ID, model.RoleAdmin)

	_, err := e.tenantSvc.Get(context.Background(), principalFor(admin), other.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	got, err := e.tenantSvc.Get(context.Background(), principalFor(admin), home.ID)
	require.NoError(t, err)
	assert.Equal(t, home.ID, got.ID)
}

func TestTenantCreateWithAdmin(t *testing.T) {
	e := newEnv()

	tenant, admin, err := e.tenantSvc.CreateWithAdmin(context.Background(), superAdmin(), &model.CreateTenantWithAdminRequest{
		Tenant: model.CreateTenantRequest{Name: "acme", Tier: model.TierBasic},
		Admin: model.CreateUserRequest{
			Email:     "boss@acme.com",
			Password:  "correct-horse",
			FirstName: "First",
			LastName:  "Boss",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, admin.TenantID)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	stored, err := e.tenants.Get(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AdminCount)
}

func TestTenantCreateWithAdminRollsBackOnBadAdmin(t *testing.T) {
	e := newEnv()

	_, _, err := e.tenantSvc.CreateWithAdmin(context.Background(), superAdmin(), &model.CreateTenantWithAdminRequest{
		Tenant: model.CreateTenantRequest{Name: "acme", Tier: model.TierBasic},
		Admin: model.CreateUserRequest{
			Email:     "not-an-email",
			Password:  "short",
			FirstName: "Bad",
			LastName:  "Admin",
		},
	})
	require.Error(t, err)

	_, err = e.tenants.GetByName(context.Background(), "acme")
	assert.Error(t, err, "the tenant must not survive a failed admin creation")
}

func TestTenantListByStatus(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	active := e.seedTenant("up", model.TierBasic)
	down := e.seedTenant("down", model.TierBasic)
	down.Status = model.TenantSuspended
	require.NoError(t, e.tenants.Replace(ctx, down))

	tenants, err := e.tenantSvc.ListByStatus(ctx, superAdmin(), model.TenantActive)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, active.ID, tenants[0].ID)
}

func TestTenantDeleteDoesNotCascade(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	tenant := e.seedTenant("acme", model.TierPro)
	user := e.seedUser(tenant.ID, model.RoleEmployee)

	require.NoError(t, e.tenantSvc.Delete(ctx, superAdmin(), tenant.ID))

	_, err := e.tenants.Get(ctx, tenant.ID)
	assert.Error(t, err)
	// The orphaned user document remains.
	_, err = e.users.Get(ctx, user.ID)
	assert.NoError(t, err)
}
