// Package authz is the tenant-scoped access control engine. Authorize is a
// pure decision function over the principal and the declared target tenant;
// it never touches storage and never returns an error. Callers translate a
// Deny into an access-denied error, or into not-found for entity lookups so
// existence does not leak across tenants.
package authz

import (
	"github.com/helpmesh/support-platform/internal/model"
)

// Action is one authorizable operation.
type Action string

const (
	ActionTenantCreate Action = "tenant.create"
	ActionTenantRead   Action = "tenant.read"
	ActionTenantUpdate Action = "tenant.update"
	ActionTenantDelete Action = "tenant.delete"
	ActionTenantList   Action = "tenant.list"

	ActionUserCreate           Action = "user.create"
	ActionUserCreateSuperAdmin Action = "user.create_superadmin"
	ActionUserRead             Action = "user.read"
	ActionUserUpdate           Action = "user.update"
	ActionUserDelete           Action = "user.delete"
	ActionUserSetStatus        Action = "user.set_status"
	ActionUserList             Action = "user.list"
	ActionUserListAll          Action = "user.list_all"

	ActionFAQCreate Action = "faq.create"
	ActionFAQRead   Action = "faq.read"
	ActionFAQUpdate Action = "faq.update"
	ActionFAQDelete Action = "faq.delete"
	ActionFAQList   Action = "faq.list"
	ActionFAQSearch Action = "faq.search"

	ActionChatRead    Action = "chat.read"
	ActionChatList    Action = "chat.list"
	ActionChatListOwn Action = "chat.list_own"
	ActionChatAssign  Action = "chat.assign"
	ActionChatClose   Action = "chat.close"
	ActionChatMessage Action = "chat.message"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny is a negative decision with a caller-safe reason.
func Deny(reason string) Decision { return Decision{Reason: reason} }

// isFAQAction reports whether the action touches a tenant's FAQ resources.
func isFAQAction(a Action) bool {
	switch a {
	case ActionFAQCreate, ActionFAQRead, ActionFAQUpdate, ActionFAQDelete, ActionFAQList, ActionFAQSearch:
		return true
	}
	return false
}

// superAdminOnly are actions no tenant-scoped role may perform.
func superAdminOnly(a Action) bool {
	switch a {
	case ActionTenantCreate, ActionTenantDelete, ActionTenantList, ActionUserListAll:
		return true
	}
	return false
}

// employeeAllowed are the same-tenant actions an Employee may perform.
// Employees are read-mostly: chat work plus FAQ and tenant reads.
func employeeAllowed(a Action) bool {
	switch a {
	case ActionTenantRead,
		ActionFAQRead, ActionFAQList, ActionFAQSearch,
		ActionChatRead, ActionChatListOwn, ActionChatAssign, ActionChatClose, ActionChatMessage:
		return true
	}
	return false
}

// Authorize decides whether principal may perform action against the tenant
// identified by targetTenantID.
//
// SuperAdmin is allowed everywhere except tenant-scoped FAQ resources and the
// creation of further SuperAdmin accounts. Admin is confined to its own
// tenant and may not create SuperAdmins. Employee is confined to its own
// tenant and limited to reads and chat work.
func Authorize(p model.Principal, action Action, targetTenantID string) Decision {
	// Nobody mints SuperAdmin accounts through the API.
	if action == ActionUserCreateSuperAdmin {
		return Deny("SuperAdmin accounts cannot be created through the API")
	}

	switch p.Role {
	case model.RoleSuperAdmin:
		// FAQs are outside the super-tenant's administrative surface.
		if isFAQAction(action) {
			return Deny("SuperAdmin cannot access tenant-scoped FAQs")
		}
		return Allow()

	case model.RoleAdmin:
		if p.TenantID == "" || p.TenantID != targetTenantID {
			return Deny("access denied to another tenant")
		}
		if superAdminOnly(action) {
			return Deny("operation requires SuperAdmin")
		}
		return Allow()

	case model.RoleEmployee:
		if p.TenantID == "" || p.TenantID != targetTenantID {
			return Deny("access denied to another tenant")
		}
		if !employeeAllowed(action) {
			return Deny("operation requires Admin")
		}
		return Allow()
	}

	return Deny("unknown role")
}

// AuthorizeSelf enforces the self-protection invariant: a principal may never
// deactivate or delete its own user record, regardless of role. It is checked
// after Authorize, independent of it.
func AuthorizeSelf(p model.Principal, targetUserID string) Decision {
	if p.UserID == targetUserID {
		return Deny("cannot deactivate or delete your own account")
	}
	return Allow()
}
