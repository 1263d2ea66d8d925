package token

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "refresh:"

// RedisRefreshStore keeps refresh tokens in Redis with a TTL.
type RedisRefreshStore struct {
	client *redis.Client
}

// NewRedisRefreshStore creates a refresh store over the given client.
func NewRedisRefreshStore(client *redis.Client) *RedisRefreshStore {
	return &RedisRefreshStore{client: client}
}

// Save stores the token with the given TTL.
func (s *RedisRefreshStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKeyPrefix+token, userID, ttl).Err()
}

// Lookup resolves the token to a user id. Unknown or expired tokens return
// ErrInvalidToken.
func (s *RedisRefreshStore) Lookup(ctx context.Context, token string) (string, error) {
	userID, err := s.client.Get(ctx, refreshKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// Revoke deletes the token. Revoking an unknown token is not an error.
func (s *RedisRefreshStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, refreshKeyPrefix+token).Err()
}
