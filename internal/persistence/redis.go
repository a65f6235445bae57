package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/medconsult/consultation-service/internal/config"
)

// Redis is the client shared by the notification outbox, the auth rate limiter and the
// readiness check. Keys built through Key carry the configured prefix.
type Redis struct {
	Client *redis.Client
	prefix string
}

// NewRedis builds the client and waits up to cfg.ConnectTimeout for the server to answer.
// An unreachable server is not fatal: callers that depend on Redis fail open or report
// not ready until it comes back.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	r := &Redis{Client: redis.NewClient(opts), prefix: strings.TrimSuffix(cfg.KeyPrefix, ":")}

	log := logger.With(zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	if err := r.waitReady(ctx, cfg.ConnectTimeout); err != nil {
		log.Warn("redis not reachable; continuing degraded", zap.Error(err))
	} else {
		log.Info("connected to redis", zap.Int("pool_size", opts.PoolSize))
	}
	return r, nil
}

func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	return opts, nil
}

func (r *Redis) waitReady(ctx context.Context, wait time.Duration) error {
	if wait <= 0 {
		return r.Ping(ctx)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = wait
	return backoff.Retry(func() error { return r.Ping(ctx) }, backoff.WithContext(b, ctx))
}

// Key returns name under the configured prefix.
func (r *Redis) Key(name string) string {
	if r == nil || r.prefix == "" {
		return name
	}
	return r.prefix + ":" + name
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping reports whether Redis answers.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
