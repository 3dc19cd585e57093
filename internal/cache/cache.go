// Package cache wraps Redis behind the small get/setEx/del surface the
// catalog services consume. A Store with a nil client is valid and behaves
// like an always-empty cache, so callers never branch on whether Redis is up.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/babyshop/api/internal/config"
)

// Store is a namespaced key-value cache with TTLs in seconds.
type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	on     bool
}

// New builds a Store from a (possibly nil) Redis client and cache config.
func New(rdb *redis.Client, cfg config.CacheConfig) *Store {
	return &Store{rdb: rdb, prefix: cfg.Prefix, ttl: cfg.TTL, on: cfg.Enabled && rdb != nil}
}

// Enabled reports whether cache operations reach Redis at all.
func (s *Store) Enabled() bool { return s.on }

// DefaultTTL is the configured entry lifetime.
func (s *Store) DefaultTTL() time.Duration { return s.ttl }

// Get returns the serialized payload for a key, or ok=false on miss or any
// Redis error. Reads are best-effort: an unreachable Redis looks like a miss.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if !s.on {
		return nil, false
	}
	bs, err := s.rdb.Get(ctx, s.prefix+":"+key).Bytes()
	if err != nil {
		return nil, false
	}
	return bs, true
}

// SetEx stores a serialized payload with a TTL. Population is best-effort
// after the response is computed; concurrent writers for the same key are
// tolerated and the last serialized payload wins.
func (s *Store) SetEx(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if !s.on {
		return nil
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	return s.rdb.Set(ctx, s.prefix+":"+key, payload, ttl).Err()
}

// DelPrefix removes every key under a namespace prefix, walking the keyspace
// with SCAN so large instances are not blocked the way KEYS would.
func (s *Store) DelPrefix(ctx context.Context, prefix string) error {
	if !s.on {
		return nil
	}
	iter := s.rdb.Scan(ctx, 0, s.prefix+":"+prefix+"*", 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := s.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return s.rdb.Del(ctx, batch...).Err()
	}
	return nil
}

// Del removes keys. Deleting missing keys is not an error.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if !s.on || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + ":" + k
	}
	return s.rdb.Del(ctx, full...).Err()
}
