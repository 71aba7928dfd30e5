package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a JSON cache over Redis. A Store with a nil client is valid and
// behaves as an always-missing cache.
type Store struct {
	rdb *redis.Client
}

// NewStore wraps rdb, which may be nil.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Enabled reports whether a Redis client backs the store.
func (s *Store) Enabled() bool {
	return s != nil && s.rdb != nil
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first; on a miss it calls fetch, which must fill dest,
// and stores the result with ttl. Cache read and write failures fall through
// to fetch. The returned bool reports a cache hit.
func (s *Store) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) (bool, error) {
	if found, err := s.GetJSON(ctx, key, dest); err == nil && found {
		return true, nil
	}
	if err := fetch(); err != nil {
		return false, err
	}
	_ = s.SetJSON(ctx, key, dest, ttl)
	return false, nil
}

// IndexVersion returns the current index cache generation.
func (s *Store) IndexVersion(ctx context.Context) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	v, err := s.rdb.Get(ctx, indexVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// InvalidateIndex starts a new index cache generation, orphaning every
// cached page of the previous one until its TTL expires.
func (s *Store) InvalidateIndex(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Incr(ctx, indexVersionKey).Err()
}

// Revoke marks a session token id as revoked for ttl.
func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, BlacklistKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked. Lookup failures count as not revoked.
func (s *Store) IsRevoked(ctx context.Context, jti string) bool {
	if !s.Enabled() || jti == "" {
		return false
	}
	n, err := s.rdb.Exists(ctx, BlacklistKey(jti)).Result()
	return err == nil && n > 0
}
