// Package cache is a thin Redis wrapper used by the reference backend to
// cache order-list pages. All operations no-op safely when Redis is
// unavailable, so the backend works without it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ordersync/ordersync/config"
)

var RDB *redis.Client
var Ctx = context.Background()

// Connect initialises the Redis client and verifies it with a ping.
func Connect() error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := RDB.Ping(Ctx).Err(); err != nil {
		RDB = nil // mark unavailable so Get/Set/Del no-op
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	return nil
}

// Get retrieves a cached value by key and unmarshals into dest.
// Returns true on a hit, false on miss or error.
func Get(key string, dest interface{}) bool {
	if RDB == nil {
		return false
	}

	val, err := RDB.Get(Ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

// Set stores value under key for the given TTL.
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

// Del removes one or more keys.
func Del(keys ...string) error {
	if RDB == nil {
		return nil
	}
	return RDB.Del(Ctx, keys...).Err()
}

// Incr atomically increments the integer stored at key and returns the new
// value. The backend uses it as a generation counter to invalidate every
// cached order-list page in O(1) on mutation.
func Incr(key string) (int64, error) {
	if RDB == nil {
		return 0, nil
	}
	return RDB.Incr(Ctx, key).Result()
}

// GetInt64 reads an integer value, returning 0 on miss.
func GetInt64(key string) int64 {
	if RDB == nil {
		return 0
	}
	n, err := RDB.Get(Ctx, key).Int64()
	if err != nil {
		return 0
	}
	return n
}
