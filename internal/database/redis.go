package database

import (
	"context"
	"fmt"
	"time"

	"github.com/kpredict/predict-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewRedisClient connects the shared client carrying the statistics cache,
// the recompute queue and the progress PubSub channels. The startup ping is
// bounded so a dead Redis fails fast instead of hanging boot.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Int("db", opt.DB).
		Msg("redis ready")

	return rdb, nil
}
