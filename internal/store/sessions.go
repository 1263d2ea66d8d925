package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/helpmesh/support-platform/internal/model"
)

// SessionStore persists chat sessions. Mutations go through ReplaceVersioned,
// which refuses to overwrite a document that changed since it was read, so
// concurrent appends cannot silently drop each other's messages.
type SessionStore struct {
	col *mongo.Collection
}

// NewSessionStore creates a session store on the chat_sessions collection.
func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{col: db.Collection(collSessions)}
}

// Insert stores a new session.
func (s *SessionStore) Insert(ctx context.Context, sess *model.ChatSession) error {
	_, err := s.col.InsertOne(ctx, sess)
	return err
}

// Get returns the session with the given id, or ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (*model.ChatSession, error) {
	var sess model.ChatSession
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&sess)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// ListActiveByTenant returns a tenant's sessions in the Active state.
func (s *SessionStore) ListActiveByTenant(ctx context.Context, tenantID string) ([]model.ChatSession, error) {
	cur, err := s.col.Find(ctx, bson.M{"tenantId": tenantID, "state": model.SessionActive})
	if err != nil {
		return nil, err
	}
	var sessions []model.ChatSession
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListByEmployee returns the sessions assigned to an employee, newest first.
func (s *SessionStore) ListByEmployee(ctx context.Context, employeeID string) ([]model.ChatSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"assignedEmployeeId": employeeID}, opts)
	if err != nil {
		return nil, err
	}
	var sessions []model.ChatSession
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ReplaceVersioned writes the full session document back, conditioned on the
// version the caller read. On success the stored version is sess.Version+1.
// Returns ErrVersionConflict when another writer got there first.
func (s *SessionStore) ReplaceVersioned(ctx context.Context, sess *model.ChatSession) error {
	readVersion := sess.Version
	sess.Version = readVersion + 1
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": sess.ID, "version": readVersion}, sess)
	if err != nil {
		sess.Version = readVersion
		return err
	}
	if res.MatchedCount == 0 {
		sess.Version = readVersion
		// Either the session vanished or a concurrent writer bumped the
		// version; disambiguate with a lookup.
		if _, lookupErr := s.Get(ctx, sess.ID); lookupErr == ErrNotFound {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}
