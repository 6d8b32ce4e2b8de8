package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soaringjerry/Raay/internal/builder"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (builder.Snapshot, bool, error) {
	v, err := r.client.Get(ctx, draftKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return builder.Snapshot{}, false, nil
	}
	if err != nil {
		return builder.Snapshot{}, false, err
	}
	var snap builder.Snapshot
	if err := json.Unmarshal(v, &snap); err != nil {
		return builder.Snapshot{}, false, fmt.Errorf("decode draft %s: %w", sessionID, err)
	}
	return snap, true, nil
}

// Set stores snap and restarts its TTL.
func (r *RedisStore) Set(ctx context.Context, sessionID string, snap builder.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, draftKey(sessionID), b, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, draftKey(sessionID)).Err()
}

func draftKey(sessionID string) string {
	return fmt.Sprintf("builder:draft:%s", sessionID)
}
