package redis

import (
	"context"
	"crypto/tls"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/orthodoxrecords/site/internal/config"
)

// Client wraps the redis connection used by the shared rate limiter.
type Client struct {
	Native *redis.Client
}

// Connect instantiates the redis client and checks it answers within timeout.
func Connect(ctx context.Context, cfg config.RedisConfig, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	options := &redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(options)
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if logger != nil {
			logger.Warn("redis ping failed", zap.String("addr", cfg.Addr), zap.Error(err))
		}
		_ = client.Close()
		return nil, err
	}
	if logger != nil {
		logger.Info("redis connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}
	return &Client{Native: client}, nil
}

// Close redis connection.
func (c *Client) Close() error {
	if c == nil || c.Native == nil {
		return nil
	}
	return c.Native.Close()
}
