package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultKeyPrefix namespaces session keys in Redis.
const DefaultKeyPrefix = "rabbitry:session:"

// RedisStore keeps sessions as JSON values with a Redis TTL, so state is
// shared across replicas and survives restarts.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore wraps client. ttl <= 0 selects DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, prefix: DefaultKeyPrefix}
}

func (r *RedisStore) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}

// Get returns the stored session or a fresh idle one when the key is absent.
func (r *RedisStore) Get(ctx context.Context, userID int64) (*Session, error) {
	raw, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", userID, err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", userID, err)
	}
	return &s, nil
}

// Put writes s with SET ... EX ttl.
func (r *RedisStore) Put(ctx context.Context, userID int64, s *Session) error {
	cp := *s
	cp.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(userID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("put session %d: %w", userID, err)
	}
	return nil
}

// Delete removes the session key.
func (r *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("delete session %d: %w", userID, err)
	}
	return nil
}

// Ping checks connectivity; used at startup.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
