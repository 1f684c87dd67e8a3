// file: db/redis.go

package db

import (
	"context"
	"fmt"
	"go-shop-api/config"
	"go-shop-api/logger"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis initializes and returns a new Redis client for the active
// refresh-token set.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	rc := cfg.Redis
	redisAddr := fmt.Sprintf("%s:%s", rc.Host, rc.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: rc.Password,
		DB:       rc.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Log.WithError(err).Error("Failed to ping Redis")
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Log.WithField("address", redisAddr).Info("Redis connection established successfully")
	return rdb, nil
}
