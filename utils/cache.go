// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"fixline/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionClient backs the realtime per-user session channels.
	SessionClient *redis.Client
)

// InitSessionClient initializes the Redis client used for realtime session pub/sub.
func InitSessionClient() {
	SessionClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := SessionClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Sessions): %v", err)
	}
}

// GetSessionClient returns the Redis client for session channels.
func GetSessionClient() *redis.Client {
	if SessionClient == nil {
		InitSessionClient()
	}
	return SessionClient
}
