package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-management-service/cmd/usersvc/infrastructure"
	"user-management-service/internal/adapter/cache"
	"user-management-service/internal/adapter/db/orm"
	ginhandler "user-management-service/internal/adapter/gin/handler"
	"user-management-service/internal/adapter/gin/middleware"
	"user-management-service/internal/adapter/repository/cached"
	"user-management-service/internal/config"
	"user-management-service/internal/usecase/user"
	redisclient "user-management-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	RateLimiter *middleware.RateLimiter
	GinHandler  *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Initialize database
	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Redis client, only when caching or rate limiting is on
	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	return build(cfg, l, db, rdb), nil
}

// build wires repositories, the use case and HTTP components over already
// opened connections. rdb may be nil.
func build(cfg *config.Config, l *zap.Logger, db *gorm.DB, rdb *redisclient.Client) *Container {
	var client *redis.Client
	if rdb != nil {
		client = rdb.Client
	}

	// Initialize repository
	var repo user.Repository = orm.NewUserRepo(db, l)
	if cfg.Redis.CacheEnabled && client != nil {
		userCache := cache.NewRedisUserCache(
			client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewUserRepository(repo, userCache, l)
		l.Info("user cache enabled", zap.Int("ttl_seconds", cfg.Redis.CacheTTL))
	}

	// Initialize use case
	userUC := user.New(repo, l)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(
		client,
		middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
			Enabled:           cfg.RateLimit.Enabled,
		},
		l,
	)

	// Initialize Gin handler
	ginHandler := ginhandler.NewUserHandler(userUC, l)

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		UserUC:      userUC,
		RateLimiter: rateLimiter,
		GinHandler:  ginHandler,
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
