package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"user-management-service/pkg/logger"
)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// tokenBucket refills at ARGV[1] tokens per second up to ARGV[2] and tries to
// take ARGV[4] tokens at time ARGV[3]. Returns 1 when allowed.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= requested then
	tokens = tokens - requested
	allowed = 1
end

redis.call('HMSET', key, 'last_refill', now, 'tokens', tokens)
redis.call('EXPIRE', key, 60)
return allowed
`)

// RateLimiter limits requests per client, method and path with a token bucket
// kept in Redis.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	log    *zap.Logger
}

// NewRateLimiter creates a new rate limiter. A nil client disables limiting.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		log:    log,
	}
}

// Handler returns a Gin middleware for rate limiting using the Token Bucket algorithm.
// Redis failures let the request through.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.client == nil || !rl.config.Enabled {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		clientIP := c.ClientIP()
		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, c.FullPath(), clientIP)

		allowed, err := tokenBucket.Run(ctx, rl.client, []string{key},
			rl.config.RequestsPerSecond,
			rl.config.BurstCapacity,
			rl.now(c),
			1,
		).Int64()
		if err != nil {
			logger.WithContext(ctx, rl.log).Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if allowed == 0 {
			logger.WithContext(ctx, rl.log).Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": fmt.Sprintf("Rate limit exceeded: %.2f requests/second (burst capacity: %d)", rl.config.RequestsPerSecond, rl.config.BurstCapacity),
			})
			return
		}

		c.Next()
	}
}

// now returns the Redis server clock in fractional seconds so that every
// instance shares one time source. Falls back to the local clock.
func (rl *RateLimiter) now(c *gin.Context) float64 {
	t, err := rl.client.Time(c.Request.Context()).Result()
	if err != nil {
		t = time.Now()
	}
	return float64(t.UnixMicro()) / 1e6
}
