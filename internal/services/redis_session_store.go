package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"greenia/internal/interfaces"
)

const revokedKeyPrefix = "greenia:revoked:"

// RedisSessionStore keeps revoked token ids as keys that expire with the token.
type RedisSessionStore struct {
	client *redis.Client
	now    func() time.Time
}

var _ interfaces.SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore connects to rawURL (redis://...) and pings the server.
func NewRedisSessionStore(ctx context.Context, rawURL string) (*RedisSessionStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisSessionStoreFromClient(client), nil
}

func NewRedisSessionStoreFromClient(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, now: time.Now}
}

func (s *RedisSessionStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked session: %w", err)
	}
	return n > 0, nil
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
