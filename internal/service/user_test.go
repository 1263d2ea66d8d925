package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpmesh/support-platform/internal/apperr"
	"github.com/helpmesh/support-platform/internal/model"
)

func TestUserCreateWithinQuota(t *testing.T) {
	e := newEnv()
	tenant := e.seedTenant("acme", model.TierBasic)
	ctx := context.Background()

	user, err := e.userSvc.Create(ctx, superAdmin(), &model.CreateUserRequest{
		Email:     "Jamie@Acme.com",
		Password:  "correct-horse",
		FirstName: "Jamie",
		LastName:  "Lee",
		Role:      model.RoleAdmin,
		TenantID:  tenant.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "jamie@acme.com", user.Email, "emails are normalized to lower case")
	assert.Equal(t, model.UserActive, user.Status)
	assert.Equal(t, "Jamie Lee", user.DisplayName)

	stored, err := e.tenants.Get(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AdminCount)
}

func TestUserCreateAdminQuotaExceeded(t *testing.T) {
	e := newEnv()
	tenant := e.seedTenant("acme", model.TierBasic) // MaxAdmins: 1
	tenant.AdminCount = 1
	require.NoError(t, e.tenants.Replace(context.Background(), tenant))

	_, err := e.userSvc.Create(context.Background(), superAdmin(), &model.CreateUserRequest{
		Email:     "two@acme.com",
		Password:  "correct-horse",
		FirstName: "Second",
		LastName:  "Admin",
		Role:      model.RoleAdmin,
		TenantID:  tenant.ID,
	})
	require.Error(t, err)
	e2, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindQuotaExceeded, e2.Kind)
	assert.Equal(t, 1, e2.Current)
	assert.Equal(t, 1, e2.Max)
	assert.Contains(t, e2.Message, "Basic subscription")
}

func TestUserCreateAdminAutoScopedToOwnTenant(t *testing.T) {
	e := newEnv()
	home := e.seedTenant("home", model.TierPro)
	other := e.seedTenant("other", model.TierPro)
	admin := e.seedUser(home.ID, model.RoleAdmin)

	// The request names another tenant; the created user still lands in the
	// admin's own tenant.
	user, err := e.userSvc.Create(context.Background(), principalFor(admin), &model.CreateUserRequest{
		Email:     "emp@home.com",
		Password:  "correct-horse",
		FirstName: "Em",
		LastName:  "Ployee",
		Role:      model.RoleEmployee,
		TenantID:  other.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, home.ID, user.TenantID)
}

func TestUserCreateSuperAdminAlwaysDenied(t *testing.T) {
	e := newEnv()
	tenant := e.seedTenant("acme", model.TierEnterprise)

	_, err := e.userSvc.Create(context.Background(), superAdmin(), &model.CreateUserRequest{
		Email:     "root@acme.com",
		Password:  "correct-horse",
		FirstName: "Root",
		LastName:  "User",
		Role:      model.RoleSuperAdmin,
		TenantID:  tenant.ID,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))
}

func TestUserCreateInInactiveTenant(t *testing.T) {
	e := newEnv()
	tenant := e.seedTenant("acme", model.TierPro)
	tenant.Status = model.TenantSuspended
	require.NoError(t, e.tenants.Replace(context.Background(), tenant))

	_, err := e.userSvc.Create(context.Background(), superAdmin(), &model.CreateUserRequest{
		Email:     "emp@acme.com",
		Password:  "correct-horse",
		FirstName: "Em",
		LastName:  "Ployee",
		Role:      model.RoleEmployee,
		TenantID:  tenant.ID,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	e := newEnv()
	tenant := e.seedTenant("acme", model.TierPro)
	ctx := context.Background()

	req := &model.CreateUserRequest{
		Email:     "dup@acme.com",
		Password:  "correct-horse",
		FirstName: "First",
		LastName:  "User",
		Role:      model.RoleEmployee,
		TenantID:  tenant.ID,
	}
	_, err := e.userSvc.Create(ctx, superAdmin(), req)
	require.NoError(t, err)

	req2 := *req
	req2.Email = "DUP@acme.com"
	_, err = e.userSvc.Create(ctx, superAdmin(), &req2)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestUserDeleteReleasesQuotaSlot(t *testing.T) {
	e := newEnv()
	tenant := e.seedTenant("acme", model.TierBasic)
	ctx := context.Background()

	user, err := e.userSvc.Create(ctx, superAdmin(), &model.CreateUserRequest{
		Email:     "one@acme.com",
		Password:  "correct-horse",
		FirstName: "Only",
		LastName:  "Admin",
		Role:      model.RoleAdmin,
		TenantID:  tenant.ID,
	})
	require.NoError(t, err)

	require.NoError(t, e.userSvc.Delete(ctx, superAdmin(), user.ID))

	stored, err := e.tenants.Get(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AdminCount)

	// The freed slot admits a new admin.
	_, err = e.userSvc.Create(ctx, superAdmin(), &model.CreateUserRequest{
		Email:     "two@acme.com",
		Password:  "correct-horse",
		FirstName: "New",
		LastName:  "Admin",
		Role:      model.RoleAdmin,
		TenantID:  tenant.ID,
	})
	assert.NoError(t, err)
}

func TestUserCannotDeleteSelf(t *testing.T) {
	e := newEnv()
	tenant := e.seedTenant("acme", model.TierPro)
	admin := e.seedUser(tenant.ID, model.RoleAdmin)

	err := e.userSvc.Delete(context.Background(), principalFor(admin), admin.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))
}

func TestUserCannotDeactivateSelf(t *testing.T) {
	e := newEnv()
	tenant := e.seedTenant("acme", model.TierPro)
	admin := e.seedUser(tenant.ID, model.RoleAdmin)

	_, err := e.userSvc.UpdateStatus(context.Background(), principalFor(admin), admin.ID, model.UserInactive)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))

	// Deactivating someone else in the same tenant is allowed.
	other := e.seedUser(tenant.ID, model.RoleEmployee)
	updated, err := e.userSvc.UpdateStatus(context.Background(), principalFor(admin), other.ID, model.UserInactive)
	require.NoError(t, err)
	assert.Equal(t, model.UserInactive, updated.Status)
}

func TestUserCrossTenantLookupReportsNotFound(t *testing.T) {
	e := newEnv()
	home := e.seedTenant("home", model.TierPro)
	other := e.seedTenant("other", model.TierPro)
	admin := e.seedUser(home.ID, model.RoleAdmin)
	target := e.seedUser(other.ID, model.RoleEmployee)

	_, err := e.userSvc.Get(context.Background(), principalFor(admin), target.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err), "cross-tenant entities must look absent")
}

func TestUserListAllRequiresSuperAdmin(t *testing.T) {
	e := newEnv()
	tenant := e.seedTenant("acme", model.TierPro)
	admin := e.seedUser(tenant.ID, model.RoleAdmin)

	_, err := e.userSvc.ListAll(context.Background(), principalFor(admin))
	require.Error(t, err)
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))

	users, err := e.userSvc.ListAll(context.Background(), superAdmin())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRoleChangeMovesCounters(t *testing.T) {
	e := newEnv()
	tenant := e.seedTenant("acme", model.TierPro)
	ctx := context.Background()

	user, err := e.userSvc.Create(ctx, superAdmin(), &model.CreateUserRequest{
		Email:     "emp@acme.com",
		Password:  "correct-horse",
		FirstName: "Em",
		LastName:  "Ployee",
		Role:      model.RoleEmployee,
		TenantID:  tenant.ID,
	})
	require.NoError(t, err)

	newRole := model.RoleAdmin
	updated, err := e.userSvc.Update(ctx, superAdmin(), user.ID, &model.UpdateUserRequest{Role: &newRole})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)

	stored, err := e.tenants.Get(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AdminCount)
	assert.Equal(t, 0, stored.EmployeeCount)
}
