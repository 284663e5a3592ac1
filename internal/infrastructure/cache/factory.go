package cache

import (
	"context"
	"fmt"

	"github.com/workforce/backend/internal/domain/shared"
	"github.com/workforce/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory picks the idempotency store for the event handlers
type IdempotencyStoreFactory struct {
	redis        config.RedisConfig
	requireRedis bool
	logger       *zap.Logger
	connectRedis func(context.Context, config.RedisConfig) (shared.IdempotencyStore, error)
}

// IdempotencyStoreFactoryOption configures the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the factory logger
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithRequireRedis makes CreateStore fail instead of falling back to memory
func WithRequireRedis(required bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.requireRedis = required
	}
}

// NewIdempotencyStoreFactory creates a factory for the given Redis settings
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redis:  cfg,
		logger: zap.NewNop(),
		connectRedis: func(ctx context.Context, cfg config.RedisConfig) (shared.IdempotencyStore, error) {
			return NewRedisIdempotencyStore(ctx, cfg)
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when Redis is enabled and reachable.
// Otherwise it returns an in-memory store, unless Redis is required.
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context) (shared.IdempotencyStore, error) {
	if !f.redis.Enabled {
		if f.requireRedis {
			return nil, fmt.Errorf("redis idempotency store is required but redis is disabled")
		}
		f.logger.Info("redis disabled, using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := f.connectRedis(ctx, f.redis)
	if err == nil {
		f.logger.Info("using redis idempotency store", zap.String("addr", f.redis.Addr()))
		return store, nil
	}
	if f.requireRedis {
		return nil, fmt.Errorf("redis idempotency store is required: %w", err)
	}

	f.logger.Warn("redis unavailable, falling back to in-memory idempotency store",
		zap.String("addr", f.redis.Addr()),
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
