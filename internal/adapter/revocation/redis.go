package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"foodshare/internal/domain"
)

const keyPrefix = "revoked:jti:"

// RedisStore persists revoked token ids with a TTL matching the token expiry,
// so entries survive restarts and are shared between instances.
type RedisStore struct {
	rdb goredis.UniversalClient
	now func() time.Time
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb goredis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

func (s *RedisStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return fmt.Errorf("%w: token id required", domain.ErrValidation)
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, keyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revocation: set %s: %w", tokenID, err)
	}
	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.rdb.Get(ctx, keyPrefix+tokenID).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, goredis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("revocation: get %s: %w", tokenID, err)
	}
}

var _ domain.RevocationStore = (*RedisStore)(nil)
