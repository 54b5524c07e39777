package app

import (
	"context"

	"persona-auth/internal/config"
	"persona-auth/internal/db"
	"persona-auth/internal/logger"
	"persona-auth/internal/redis"
)

type Infra struct {
	DB    *db.DB
	Redis *redis.Client // nil when REDIS_ADDR is unset
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	database, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	logger.Info("database ready", nil)

	infra := &Infra{DB: database}

	if cfg.RedisAddr == "" {
		logger.Warn("redis not configured, identity cache disabled", nil)
		return infra, nil
	}

	redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		database.Close()
		return nil, err
	}

	logger.Info("redis ready", nil)

	infra.Redis = redisClient
	return infra, nil
}

func (i *Infra) Close() error {
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			logger.Error("redis close failed", map[string]any{
				"error": err.Error(),
			})
		}
	}
	return i.DB.Close()
}
