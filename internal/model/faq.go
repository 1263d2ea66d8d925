package model

import (
	"time"
)

// FAQNode is one question/answer pair in a tenant's knowledge base. A node
// exclusively owns its children; every child's depth is the parent's depth
// plus one. A whole tree is stored as a single document rooted at depth 1.
type FAQNode struct {
	ID        string    `bson:"_id" json:"id"`
	TenantID  string    `bson:"tenantId" json:"tenant_id"`
	Depth     int       `bson:"depth" json:"depth"`
	Question  string    `bson:"question" json:"question"`
	Answer    string    `bson:"answer" json:"answer"`
	Children  []FAQNode `bson:"children,omitempty" json:"children,omitempty"`
	CreatedBy string    `bson:"createdBy,omitempty" json:"created_by,omitempty"`
	UpdatedBy string    `bson:"updatedBy,omitempty" json:"updated_by,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// CreateFAQRequest creates an FAQ tree. Depths are assigned by the server:
// the root gets depth 1 and children inherit parent depth + 1.
type CreateFAQRequest struct {
	Question string             `json:"question"`
	Answer   string             `json:"answer"`
	Children []CreateFAQRequest `json:"children,omitempty"`
}

// UpdateFAQRequest replaces a node's content and its entire subtree.
type UpdateFAQRequest struct {
	Question string             `json:"question"`
	Answer   string             `json:"answer"`
	Children []CreateFAQRequest `json:"children,omitempty"`
}

// FAQStats reports a tenant's FAQ usage against its subscription limit.
type FAQStats struct {
	TenantID     string           `json:"tenant_id"`
	Tier         SubscriptionTier `json:"tier"`
	Current      int              `json:"current"`
	Max          int              `json:"max"`
	Remaining    int              `json:"remaining"`
	UsagePercent float64          `json:"usage_percent"`
}
