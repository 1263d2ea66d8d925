package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/helpmesh/support-platform/internal/model"
)

// TenantStore persists tenants.
type TenantStore struct {
	col *mongo.Collection
}

// NewTenantStore creates a tenant store on the tenants collection.
func NewTenantStore(db *mongo.Database) *TenantStore {
	return &TenantStore{col: db.Collection(collTenants)}
}

// Insert stores a new tenant.
func (s *TenantStore) Insert(ctx context.Context, t *model.Tenant) error {
	_, err := s.col.InsertOne(ctx, t)
	return err
}

// Get returns the tenant with the given id, or ErrNotFound.
func (s *TenantStore) Get(ctx context.Context, id string) (*model.Tenant, error) {
	var t model.Tenant
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByName returns the tenant with the given name, or ErrNotFound.
func (s *TenantStore) GetByName(ctx context.Context, name string) (*model.Tenant, error) {
	var t model.Tenant
	err := s.col.FindOne(ctx, bson.M{"name": name}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByDomain returns the tenant that registered the given domain, or
// ErrNotFound. Domains are globally unique across tenants.
func (s *TenantStore) FindByDomain(ctx context.Context, domain string) (*model.Tenant, error) {
	var t model.Tenant
	err := s.col.FindOne(ctx, bson.M{"domains": domain}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns every tenant.
func (s *TenantStore) List(ctx context.Context) ([]model.Tenant, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var tenants []model.Tenant
	if err := cur.All(ctx, &tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

// ListByStatus returns the tenants in the given lifecycle state.
func (s *TenantStore) ListByStatus(ctx context.Context, status model.TenantStatus) ([]model.Tenant, error) {
	cur, err := s.col.Find(ctx, bson.M{"status": status})
	if err != nil {
		return nil, err
	}
	var tenants []model.Tenant
	if err := cur.All(ctx, &tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

// Replace writes the full tenant document back.
func (s *TenantStore) Replace(ctx context.Context, t *model.Tenant) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the tenant document. Owned users, FAQs and sessions are not
// cascaded.
func (s *TenantStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncUserCount adjusts the live admin or employee counter by delta. SuperAdmin
// users are never counted.
func (s *TenantStore) IncUserCount(ctx context.Context, id string, role model.Role, delta int) error {
	var field string
	switch role {
	case model.RoleAdmin:
		field = "adminCount"
	case model.RoleEmployee:
		field = "employeeCount"
	default:
		return nil
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{field: delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}
