package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultDialTimeout = 5 * time.Second

// Config holds Redis connection configuration.
type Config struct {
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int
	DialTimeout time.Duration
}

// Addr returns the host:port the client dials.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Client wraps redis.Client and owns its lifecycle.
type Client struct {
	*redis.Client
	addr string
	log  *zap.Logger
}

// NewClient opens a connection pool and verifies it with a ping bounded by
// ctx and the dial timeout. The pool is closed again if the ping fails.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	addr := cfg.Addr()

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConn,
		DialTimeout:  dialTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	log.Info("Redis connected successfully",
		zap.String("addr", addr),
		zap.Int("db", cfg.DB),
		zap.Int("pool_size", cfg.PoolSize),
	)

	return &Client{
		Client: rdb,
		addr:   addr,
		log:    log,
	}, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Ping checks if the Redis connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// Close releases the pool. Safe on a nil Client.
func (c *Client) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	c.log.Info("Closing Redis connection", zap.String("addr", c.addr))
	return c.Client.Close()
}
