package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robalobadob/arg-server/internal/game"
)

const redisKeyPrefix = "arg:session:"

// redisStore keeps sessions as JSON values so several server processes can
// share player progress. Each Save refreshes the TTL.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a Store backed by client. ttl <= 0 means no expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (r *redisStore) Save(ctx context.Context, playerID string, s *game.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ttl := r.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, redisKeyPrefix+playerID, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *redisStore) Get(ctx context.Context, playerID string) (*game.Session, error) {
	b, err := r.client.Get(ctx, redisKeyPrefix+playerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var s game.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}
