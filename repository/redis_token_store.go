// file: repository/redis_token_store.go

package repository

import (
	"context"
	"go-shop-api/logger"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "refresh:"

// RedisClient is the subset of *redis.Client the token store needs.
// Keeping it narrow lets tests substitute a mock.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisTokenStore keeps one key per active refresh token, expiring together
// with the token. Suitable for deployments with several API instances.
type RedisTokenStore struct {
	client RedisClient
}

func NewRedisTokenStore(client RedisClient) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func refreshKey(token string) string {
	return refreshKeyPrefix + HashToken(token)
}

func (s *RedisTokenStore) Add(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired; nothing to honour.
		return nil
	}
	if err := s.client.Set(ctx, refreshKey(token), userID, ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to store refresh token in redis")
		return err
	}
	return nil
}

func (s *RedisTokenStore) Contains(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, refreshKey(token)).Result()
	if err != nil {
		logger.Log.WithError(err).Error("Failed to check refresh token in redis")
		return false, err
	}
	return n > 0, nil
}

// Remove relies on DEL being atomic: only one caller sees a count of 1.
func (s *RedisTokenStore) Remove(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Del(ctx, refreshKey(token)).Result()
	if err != nil {
		logger.Log.WithError(err).Error("Failed to delete refresh token from redis")
		return false, err
	}
	return n > 0, nil
}
