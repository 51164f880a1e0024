package utils

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// GetRedisClient connects to redis and pings it once so that misconfiguration
// surfaces at start up instead of at the first request.
func GetRedisClient(ctx context.Context, addr string, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
