// Package quota enforces per-tenant subscription limits. The check reads a
// live count, compares it against the tier-derived ceiling and returns; the
// subsequent insert and counter increment are issued separately by the
// caller, so concurrent creates can transiently over-admit past the limit.
// That check-then-act window is a deliberately preserved property of the
// platform, not an oversight.
package quota

import (
	"context"
	"fmt"

	"github.com/helpmesh/support-platform/internal/apperr"
	"github.com/helpmesh/support-platform/internal/model"
)

// Kind names a quota-gated resource.
type Kind string

const (
	KindAdmin    Kind = "admin"
	KindEmployee Kind = "employee"
	KindFAQ      Kind = "faq"
)

// LimitsForTier is the fixed tier lookup table. Changing a tenant's tier
// recomputes limits but never evicts over-limit resources.
func LimitsForTier(tier model.SubscriptionTier) model.Limits {
	switch tier {
	case model.TierBasic:
		return model.Limits{MaxAdmins: 1, MaxEmployees: 5, MaxFAQs: 25, MaxChatSessions: 50}
	case model.TierPro:
		return model.Limits{MaxAdmins: 3, MaxEmployees: 25, MaxFAQs: 100, MaxChatSessions: 500}
	case model.TierPremium:
		return model.Limits{MaxAdmins: 5, MaxEmployees: 100, MaxFAQs: 500, MaxChatSessions: 2000}
	case model.TierEnterprise:
		return model.Limits{MaxAdmins: 10, MaxEmployees: 500, MaxFAQs: 2000, MaxChatSessions: 10000}
	}
	return model.Limits{}
}

// FAQCounter counts a tenant's FAQ documents (a flat count of stored trees,
// not per-branch).
type FAQCounter interface {
	CountByTenant(ctx context.Context, tenantID string) (int64, error)
}

// Enforcer validates resource creation against a tenant's limits.
type Enforcer struct {
	faqs FAQCounter
}

// NewEnforcer creates a quota enforcer backed by the given FAQ counter.
func NewEnforcer(faqs FAQCounter) *Enforcer {
	return &Enforcer{faqs: faqs}
}

// CheckAndReserve returns nil when the tenant may create one more resource of
// the given kind, or a quota-exceeded error carrying the observed counts.
// User creation compares the tenant's live role counters; FAQ creation counts
// stored documents. SuperAdmin creation is never counted and never checked.
func (e *Enforcer) CheckAndReserve(ctx context.Context, tenant *model.Tenant, kind Kind) error {
	switch kind {
	case KindAdmin:
		if tenant.AdminCount >= tenant.Limits.MaxAdmins {
			return apperr.QuotaExceeded(
				fmt.Sprintf("cannot create more admins: your %s subscription allows a maximum of %d, current: %d",
					tenant.Tier, tenant.Limits.MaxAdmins, tenant.AdminCount),
				tenant.AdminCount, tenant.Limits.MaxAdmins)
		}
	case KindEmployee:
		if tenant.EmployeeCount >= tenant.Limits.MaxEmployees {
			return apperr.QuotaExceeded(
				fmt.Sprintf("cannot create more employees: your %s subscription allows a maximum of %d, current: %d",
					tenant.Tier, tenant.Limits.MaxEmployees, tenant.EmployeeCount),
				tenant.EmployeeCount, tenant.Limits.MaxEmployees)
		}
	case KindFAQ:
		count, err := e.faqs.CountByTenant(ctx, tenant.ID)
		if err != nil {
			return apperr.Internal("failed to count FAQs", err)
		}
		if int(count) >= tenant.Limits.MaxFAQs {
			return apperr.QuotaExceeded(
				fmt.Sprintf("cannot create more FAQs: your %s subscription allows a maximum of %d, current: %d",
					tenant.Tier, tenant.Limits.MaxFAQs, count),
				int(count), tenant.Limits.MaxFAQs)
		}
	}
	return nil
}

// KindForRole maps a user role to its quota kind. SuperAdmin has no quota.
func KindForRole(role model.Role) (Kind, bool) {
	switch role {
	case model.RoleAdmin:
		return KindAdmin, true
	case model.RoleEmployee:
		return KindEmployee, true
	}
	return "", false
}
