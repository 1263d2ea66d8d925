package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/helpmesh/support-platform/internal/model"
)

// FAQStore persists FAQ trees. Each stored document is a whole tree rooted at
// depth 1; updates replace the document including all descendants, and deletes
// remove the subtree with it.
type FAQStore struct {
	col *mongo.Collection
}

// NewFAQStore creates an FAQ store on the faqs collection.
func NewFAQStore(db *mongo.Database) *FAQStore {
	return &FAQStore{col: db.Collection(collFAQs)}
}

// Insert stores a new FAQ tree.
func (s *FAQStore) Insert(ctx context.Context, f *model.FAQNode) error {
	_, err := s.col.InsertOne(ctx, f)
	return err
}

// Get returns the FAQ tree with the given root id, or ErrNotFound.
func (s *FAQStore) Get(ctx context.Context, id string) (*model.FAQNode, error) {
	var f model.FAQNode
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListByTenant returns a tenant's FAQ trees ordered by depth, then creation
// time.
func (s *FAQStore) ListByTenant(ctx context.Context, tenantID string) ([]model.FAQNode, error) {
	opts := options.Find().SetSort(bson.D{{Key: "depth", Value: 1}, {Key: "createdAt", Value: 1}})
	cur, err := s.col.Find(ctx, bson.M{"tenantId": tenantID}, opts)
	if err != nil {
		return nil, err
	}
	var faqs []model.FAQNode
	if err := cur.All(ctx, &faqs); err != nil {
		return nil, err
	}
	return faqs, nil
}

// ListTopLevel returns a tenant's FAQ trees rooted at depth 1.
func (s *FAQStore) ListTopLevel(ctx context.Context, tenantID string) ([]model.FAQNode, error) {
	cur, err := s.col.Find(ctx, bson.M{"tenantId": tenantID, "depth": 1})
	if err != nil {
		return nil, err
	}
	var faqs []model.FAQNode
	if err := cur.All(ctx, &faqs); err != nil {
		return nil, err
	}
	return faqs, nil
}

// Search returns a tenant's FAQ trees whose root question or answer contains
// the term, case-insensitively.
func (s *FAQStore) Search(ctx context.Context, tenantID, term string) ([]model.FAQNode, error) {
	re := primitive.Regex{Pattern: regexQuoteMeta(term), Options: "i"}
	filter := bson.M{
		"tenantId": tenantID,
		"$or": bson.A{
			bson.M{"question": re},
			bson.M{"answer": re},
		},
	}
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var faqs []model.FAQNode
	if err := cur.All(ctx, &faqs); err != nil {
		return nil, err
	}
	return faqs, nil
}

// Replace writes the full FAQ tree back, confined to the owning tenant.
func (s *FAQStore) Replace(ctx context.Context, f *model.FAQNode) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": f.ID, "tenantId": f.TenantID}, f)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the FAQ tree and implicitly all its descendants. The filter
// is confined to the owning tenant.
func (s *FAQStore) Delete(ctx context.Context, id, tenantID string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "tenantId": tenantID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByTenant returns the flat count of a tenant's stored FAQ trees. It is
// the quota-relevant count: deletes free quota naturally because the count is
// live, never a maintained counter.
func (s *FAQStore) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"tenantId": tenantID})
}

// regexQuoteMeta escapes regex metacharacters so user terms match literally.
func regexQuoteMeta(s string) string {
	const special = `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		for j := 0; j < len(special); j++ {
			if c == special[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, c)
	}
	return string(out)
}
