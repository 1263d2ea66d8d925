package quota

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpmesh/support-platform/internal/apperr"
	"github.com/helpmesh/support-platform/internal/model"
)

type staticCounter int64

func (c staticCounter) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	return int64(c), nil
}

func TestLimitsForTier(t *testing.T) {
	tests := []struct {
		tier model.SubscriptionTier
		want model.Limits
	}{
		{model.TierBasic, model.Limits{MaxAdmins: 1, MaxEmployees: 5, MaxFAQs: 25, MaxChatSessions: 50}},
		{model.TierPro, model.Limits{MaxAdmins: 3, MaxEmployees: 25, MaxFAQs: 100, MaxChatSessions: 500}},
		{model.TierPremium, model.Limits{MaxAdmins: 5, MaxEmployees: 100, MaxFAQs: 500, MaxChatSessions: 2000}},
		{model.TierEnterprise, model.Limits{MaxAdmins: 10, MaxEmployees: 500, MaxFAQs: 2000, MaxChatSessions: 10000}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LimitsForTier(tt.tier), "tier %s", tt.tier)
	}
	assert.Zero(t, LimitsForTier(model.SubscriptionTier("Trial")))
}

func tenantWith(tier model.SubscriptionTier) *model.Tenant {
	return &model.Tenant{ID: "t-1", Tier: tier, Limits: LimitsForTier(tier)}
}

func TestCheckAndReserveAdmins(t *testing.T) {
	e := NewEnforcer(staticCounter(0))
	tenant := tenantWith(model.TierBasic)

	require.NoError(t, e.CheckAndReserve(context.Background(), tenant, KindAdmin))

	tenant.AdminCount = 1
	err := e.CheckAndReserve(context.Background(), tenant, KindAdmin)
	require.Error(t, err)
	quotaErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindQuotaExceeded, quotaErr.Kind)
	assert.Equal(t, 1, quotaErr.Current)
	assert.Equal(t, 1, quotaErr.Max)
	assert.Contains(t, quotaErr.Message, "Basic subscription allows a maximum of 1")
}

func TestCheckAndReserveEmployees(t *testing.T) {
	e := NewEnforcer(staticCounter(0))
	tenant := tenantWith(model.TierPro)
	tenant.EmployeeCount = 24

	require.NoError(t, e.CheckAndReserve(context.Background(), tenant, KindEmployee))

	tenant.EmployeeCount = 25
	err := e.CheckAndReserve(context.Background(), tenant, KindEmployee)
	require.Error(t, err)
	assert.Equal(t, apperr.KindQuotaExceeded, apperr.KindOf(err))
}

func TestCheckAndReserveFAQsUsesLiveCount(t *testing.T) {
	tenant := tenantWith(model.TierBasic)
	tenant.Limits.MaxFAQs = 2

	require.NoError(t, NewEnforcer(staticCounter(1)).CheckAndReserve(context.Background(), tenant, KindFAQ))

	err := NewEnforcer(staticCounter(2)).CheckAndReserve(context.Background(), tenant, KindFAQ)
	require.Error(t, err)
	quotaErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, 2, quotaErr.Current)
	assert.Equal(t, 2, quotaErr.Max)
}

func TestKindForRole(t *testing.T) {
	kind, ok := KindForRole(model.RoleAdmin)
	assert.True(t, ok)
	assert.Equal(t, KindAdmin, kind)

	kind, ok = KindForRole(model.RoleEmployee)
	assert.True(t, ok)
	assert.Equal(t, KindEmployee, kind)

	_, ok = KindForRole(model.RoleSuperAdmin)
	assert.False(t, ok, "superadmins are never quota-checked")
}
