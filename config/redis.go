package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// InitRedis connects to REDIS_ADDR. Without an address Redis stays nil and
// callers fall back to in-process stores.
func InitRedis() error {
	if RedisAddr == "" {
		Log.Warn("REDIS_ADDR not set, using in-memory SMS code store")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     RedisAddr,
		Password: RedisPassword,
		DB:       RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("ping redis: %w", err)
	}

	Redis = client
	Log.Info("connected to Redis")
	return nil
}

func CloseRedis() error {
	if Redis != nil {
		return Redis.Close()
	}
	return nil
}
