// Package model defines data structures for the support platform.
package model

import (
	"time"
)

// SubscriptionTier is a tenant's billing plan.
type SubscriptionTier string

const (
	TierBasic      SubscriptionTier = "Basic"
	TierPro        SubscriptionTier = "Pro"
	TierPremium    SubscriptionTier = "Premium"
	TierEnterprise SubscriptionTier = "Enterprise"
)

// Valid reports whether the tier is one of the known plans.
func (t SubscriptionTier) Valid() bool {
	switch t {
	case TierBasic, TierPro, TierPremium, TierEnterprise:
		return true
	}
	return false
}

// TenantStatus is a tenant's lifecycle state.
type TenantStatus string

const (
	TenantActive    TenantStatus = "Active"
	TenantInactive  TenantStatus = "Inactive"
	TenantSuspended TenantStatus = "Suspended"
)

// Valid reports whether the status is a known lifecycle state.
func (s TenantStatus) Valid() bool {
	switch s {
	case TenantActive, TenantInactive, TenantSuspended:
		return true
	}
	return false
}

// Limits are the per-tenant resource ceilings derived from the subscription tier.
type Limits struct {
	MaxAdmins       int `bson:"maxAdmins" json:"max_admins"`
	MaxEmployees    int `bson:"maxEmployees" json:"max_employees"`
	MaxFAQs         int `bson:"maxFAQs" json:"max_faqs"`
	MaxChatSessions int `bson:"maxChatSessions" json:"max_chat_sessions"`
}

// Tenant is an isolated customer organization. AdminCount and EmployeeCount are
// maintained by increment/decrement on user create/delete, not recomputed.
type Tenant struct {
	ID            string           `bson:"_id" json:"id"`
	Name          string           `bson:"name" json:"name"`
	Kind          string           `bson:"kind" json:"kind,omitempty"`
	Tier          SubscriptionTier `bson:"tier" json:"tier"`
	Limits        Limits           `bson:"limits" json:"limits"`
	AdminCount    int              `bson:"adminCount" json:"admin_count"`
	EmployeeCount int              `bson:"employeeCount" json:"employee_count"`
	Status        TenantStatus     `bson:"status" json:"status"`
	Domains       []string         `bson:"domains" json:"domains,omitempty"`
	CreatedBy     string           `bson:"createdBy" json:"created_by,omitempty"`
	CreatedAt     time.Time        `bson:"createdAt" json:"created_at"`
	UpdatedAt     time.Time        `bson:"updatedAt" json:"updated_at"`
}

// CreateTenantRequest is the request to register a new tenant.
type CreateTenantRequest struct {
	Name    string           `json:"name"`
	Kind    string           `json:"kind,omitempty"`
	Tier    SubscriptionTier `json:"tier"`
	Domains []string         `json:"domains,omitempty"`
}

// UpdateTenantRequest updates a tenant. Zero-valued fields are left unchanged.
type UpdateTenantRequest struct {
	Name    string            `json:"name,omitempty"`
	Kind    string            `json:"kind,omitempty"`
	Tier    *SubscriptionTier `json:"tier,omitempty"`
	Domains []string          `json:"domains,omitempty"`
	Status  *TenantStatus     `json:"status,omitempty"`
}

// CreateTenantWithAdminRequest creates a tenant together with its first admin.
type CreateTenantWithAdminRequest struct {
	Tenant CreateTenantRequest `json:"tenant"`
	Admin  CreateUserRequest   `json:"admin"`
}
