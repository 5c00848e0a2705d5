package repository

import (
	"context"
	"errors"

	"github.com/ikkim/shopgenie-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type redisSnapshotRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisSnapshotRepository(client *redis.Client, prefix string) SnapshotRepository {
	return &redisSnapshotRepository{client: client, prefix: prefix}
}

func (r *redisSnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	payload, err := r.client.Get(ctx, namespaced(r.prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		logger.Error("Failed to read snapshot from Redis", err, map[string]interface{}{
			"key": key,
		})
		return nil, err
	}
	return payload, nil
}

func (r *redisSnapshotRepository) Put(ctx context.Context, key string, payload []byte) error {
	logger.Debug("Writing snapshot to Redis", map[string]interface{}{
		"key":   key,
		"bytes": len(payload),
	})
	if err := r.client.Set(ctx, namespaced(r.prefix, key), payload, 0).Err(); err != nil {
		logger.Error("Failed to write snapshot to Redis", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	return nil
}

func (r *redisSnapshotRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, namespaced(r.prefix, key)).Err(); err != nil {
		logger.Error("Failed to delete snapshot from Redis", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	return nil
}
