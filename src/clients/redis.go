package clients

import (
	"context"
	"time"
	"workspace-core-svc/src/internal/config"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(cfg *config.Configuration) (*RedisClient, error) {
	log.WithField("url", cfg.Redis.Url).Info("Connecting to Redis...")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Url,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Error("Failed to ping Redis")
		return nil, err
	}

	log.Infof("Connected to Redis at %s", cfg.Redis.Url)

	return &RedisClient{Client: client}, nil
}

func (r *RedisClient) Close() error {
	if err := r.Client.Close(); err != nil {
		log.WithError(err).Error("Failed to close Redis connection")
		return err
	}
	log.Info("Redis connection closed")
	return nil
}
