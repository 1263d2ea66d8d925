// Package store implements the persistence layer over MongoDB: filtered
// finds, inserts, full-document replaces, deletes and counts per entity
// collection. No multi-document transactions are used anywhere; callers own
// the resulting check-then-act windows.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	collTenants  = "tenants"
	collUsers    = "users"
	collFAQs     = "faqs"
	collSessions = "chat_sessions"
)

// ErrNotFound is returned when a filtered lookup matches nothing.
var ErrNotFound = errors.New("store: not found")

// ErrVersionConflict is returned by versioned replaces when the document
// changed since it was read.
var ErrVersionConflict = errors.New("store: version conflict")

// Connect opens a MongoDB client and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client.Database(database), nil
}

// Disconnect closes the client backing db.
func Disconnect(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}
