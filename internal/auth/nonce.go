package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const noncePrefix = "auth:nonce:"

// NonceStore issues single-use login challenges with a short TTL. Consume
// is atomic (GETDEL), so a nonce can never authenticate twice.
type NonceStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewNonceStore(rdb *redis.Client, ttl time.Duration) *NonceStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &NonceStore{rdb: rdb, ttl: ttl}
}

func (s *NonceStore) TTL() time.Duration { return s.ttl }

func (s *NonceStore) Issue(ctx context.Context) (string, error) {
	nonce := uuid.NewString()
	if err := s.rdb.Set(ctx, noncePrefix+nonce, "1", s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store nonce: %w", err)
	}
	return nonce, nil
}

func (s *NonceStore) Consume(ctx context.Context, nonce string) error {
	res, err := s.rdb.GetDel(ctx, noncePrefix+nonce).Result()
	if err == redis.Nil || res == "" {
		return fmt.Errorf("unknown or expired nonce")
	}
	if err != nil {
		return fmt.Errorf("consume nonce: %w", err)
	}
	return nil
}
