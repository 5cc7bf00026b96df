package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/batch-scheduler-api/pkg/config"
)

const pingAttempts = 3

// NewRedis connects the client backing the teacher directory cache. It returns
// nil without error when Redis is disabled, and the service then runs uncached.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	addr := client.Options().Addr

	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		err = client.Ping(ctx).Err()
		cancel()
		if err == nil {
			logger.Info("redis connected", zap.String("addr", addr), zap.Int("db", cfg.DB), zap.String("key_prefix", cfg.KeyPrefix))
			return client, nil
		}
		logger.Warn("redis ping failed", zap.String("addr", addr), zap.Int("attempt", attempt), zap.Error(err))
		if attempt < pingAttempts {
			time.Sleep(time.Duration(attempt) * 200 * time.Millisecond)
		}
	}
	_ = client.Close()
	return nil, fmt.Errorf("ping redis %s after %d attempts: %w", addr, pingAttempts, err)
}

// Key joins non-empty parts with ':' into a namespaced cache key.
func Key(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(part, ":")
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ":")
}
