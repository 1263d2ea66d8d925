package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/helpmesh/support-platform/internal/model"
)

// UserStore persists staff users. Emails are normalized to lower case before
// they reach this layer.
type UserStore struct {
	col *mongo.Collection
}

// NewUserStore creates a user store on the users collection.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection(collUsers)}
}

// Insert stores a new user.
func (s *UserStore) Insert(ctx context.Context, u *model.User) error {
	_, err := s.col.InsertOne(ctx, u)
	return err
}

// Get returns the user with the given id, or ErrNotFound.
func (s *UserStore) Get(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns the user with the given (lower-cased) email, or
// ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListAll returns every user across all tenants.
func (s *UserStore) ListAll(ctx context.Context) ([]model.User, error) {
	return s.find(ctx, bson.M{})
}

// ListByTenant returns the users belonging to one tenant.
func (s *UserStore) ListByTenant(ctx context.Context, tenantID string) ([]model.User, error) {
	return s.find(ctx, bson.M{"tenantId": tenantID})
}

// ListByRole returns the users holding the given role, across all tenants.
func (s *UserStore) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	return s.find(ctx, bson.M{"role": role})
}

func (s *UserStore) find(ctx context.Context, filter bson.M) ([]model.User, error) {
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Replace writes the full user document back.
func (s *UserStore) Replace(ctx context.Context, u *model.User) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user document.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountAll returns the total number of users. Used by the seeder.
func (s *UserStore) CountAll(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}
