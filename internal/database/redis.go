package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/minidebet/backend/internal/config"
	"github.com/minidebet/backend/internal/logger"
)

// InitRedis connects to Redis when it is enabled. A nil client means the
// caller should fall back to in-process state.
func InitRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if !cfg.Enabled {
		log.Infow("redis disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warnw("redis connection failed, continuing without redis", "error", err)
		rdb.Close()
		return nil
	}

	log.Infow("redis connection established", "addr", cfg.Host+":"+cfg.Port)
	return rdb
}
