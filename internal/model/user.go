package model

import (
	"time"
)

// Role is a staff user's role. SuperAdmin is global; Admin and Employee are
// confined to a single tenant.
type Role string

const (
	RoleSuperAdmin Role = "SuperAdmin"
	RoleAdmin      Role = "Admin"
	RoleEmployee   Role = "Employee"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleEmployee:
		return true
	}
	return false
}

// UserStatus is a staff user's account state.
type UserStatus string

const (
	UserActive    UserStatus = "Active"
	UserInactive  UserStatus = "Inactive"
	UserSuspended UserStatus = "Suspended"
)

// Valid reports whether the status is a known account state.
func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserInactive, UserSuspended:
		return true
	}
	return false
}

// User is a staff account. TenantID is empty only for SuperAdmin users.
type User struct {
	ID           string     `bson:"_id" json:"id"`
	TenantID     string     `bson:"tenantId,omitempty" json:"tenant_id,omitempty"`
	Role         Role       `bson:"role" json:"role"`
	FirstName    string     `bson:"firstName" json:"first_name"`
	LastName     string     `bson:"lastName" json:"last_name"`
	DisplayName  string     `bson:"displayName" json:"display_name"`
	Email        string     `bson:"email" json:"email"`
	PasswordHash string     `bson:"passwordHash" json:"-"`
	Phone        string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Department   string     `bson:"department,omitempty" json:"department,omitempty"`
	Timezone     string     `bson:"timezone" json:"timezone"`
	Status       UserStatus `bson:"status" json:"status"`
	CreatedBy    string     `bson:"createdBy,omitempty" json:"created_by,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updated_at"`
}

// Principal is the authenticated actor extracted from a validated bearer token.
type Principal struct {
	UserID   string
	Role     Role
	TenantID string
}

// CreateUserRequest is the request to create a staff user.
type CreateUserRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       Role   `json:"role"`
	TenantID   string `json:"tenant_id,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
}

// UpdateUserRequest updates a user. Zero-valued fields are left unchanged.
type UpdateUserRequest struct {
	FirstName  string      `json:"first_name,omitempty"`
	LastName   string      `json:"last_name,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	Department string      `json:"department,omitempty"`
	Timezone   string      `json:"timezone,omitempty"`
	Role       *Role       `json:"role,omitempty"`
	Status     *UserStatus `json:"status,omitempty"`
}

// UpdateUserStatusRequest toggles a user's account state.
type UpdateUserStatusRequest struct {
	Status UserStatus `json:"status"`
}
