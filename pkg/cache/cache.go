// Package cache is a small JSON-over-Redis cache used for hot catalog reads.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sweetcrumb/shop/config"
	"github.com/sweetcrumb/shop/pkg/metrics"
)

var RDB *redis.Client
var Ctx = context.Background()

// Connect initialises the Redis client and verifies the connection with a
// ping. A failed connect is non-fatal for the app: Get/Set degrade to
// no-ops when RDB is nil, so the caller may log a warning and continue.
func Connect() error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	})

	ctx, cancel := context.WithTimeout(Ctx, 3*time.Second)
	defer cancel()

	if err := RDB.Ping(ctx).Err(); err != nil {
		RDB = nil
		return fmt.Errorf("cache: ping redis: %w", err)
	}
	return nil
}

// Get reads key into dest. Returns false on miss, connection loss, or
// decode failure — callers fall through to the database.
func Get(key string, dest interface{}) bool {
	if RDB == nil {
		return false
	}

	val, err := RDB.Get(Ctx, key).Result()
	if err != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false
	}

	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true
}

// Set stores value under key for ttl.
func Set(key string, value interface{}, ttl time.Duration) error {
	if RDB == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return RDB.Set(Ctx, key, data, ttl).Err()
}

// Forget removes key. Used to invalidate catalog entries after product
// mutations so stale prices never serve from cache.
func Forget(keys ...string) {
	if RDB == nil || len(keys) == 0 {
		return
	}
	_ = RDB.Del(Ctx, keys...).Err()
}
