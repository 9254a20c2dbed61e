package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

// RateLimiter Redis 分布式限流器
type RateLimiter struct {
	redis  *redis.Client
	limit  RateLimit
	logger *log.Helper
}

// RateLimit 限流配置
type RateLimit struct {
	RequestsPerMinute int
	Window            time.Duration
}

// RateLimiterConfig 限流器配置
type RateLimiterConfig struct {
	Enabled    bool
	DefaultRPM int
}

// NewRateLimiter 创建限流器
func NewRateLimiter(redisClient *redis.Client, config *RateLimiterConfig, logger log.Logger) *RateLimiter {
	if config == nil {
		config = &RateLimiterConfig{
			Enabled:    true,
			DefaultRPM: 200,
		}
	}

	return &RateLimiter{
		redis: redisClient,
		limit: RateLimit{
			RequestsPerMinute: config.DefaultRPM,
			Window:            time.Minute,
		},
		logger: log.NewHelper(log.With(logger, "module", "ratelimit")),
	}
}

// Middleware 限流中间件
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 跳过健康检查
		if c.Request.URL.Path == "/health" || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		// 如果未认证，使用 IP 作为限流维度
		userID := c.GetString("user_id")
		if userID == "" {
			userID = c.ClientIP()
		}

		key := fmt.Sprintf("ratelimit:catalog:%s", userID)

		allowed, remaining, resetAt, err := rl.checkLimit(c.Request.Context(), key)
		if err != nil {
			// 限流器故障，降级放行
			rl.logger.Errorf("rate limiter error: %v", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt))

		if !allowed {
			rl.logger.Warnf("rate limit exceeded: user=%s", userID)
			c.JSON(429, gin.H{
				"code":        429,
				"message":     "Too many requests",
				"retry_after": resetAt - time.Now().Unix(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// checkLimit 检查限流（Lua 脚本保证计数与过期设置的原子性）
func (rl *RateLimiter) checkLimit(ctx context.Context, key string) (allowed bool, remaining int, resetAt int64, err error) {
	script := redis.NewScript(`
		local key = KEYS[1]
		local limit = tonumber(ARGV[1])
		local window = tonumber(ARGV[2])
		local current_time = tonumber(ARGV[3])

		local current = redis.call('GET', key)

		if current and tonumber(current) >= limit then
			local ttl = redis.call('TTL', key)
			return {0, 0, current_time + ttl}
		end

		local new_count = redis.call('INCR', key)

		if new_count == 1 then
			redis.call('EXPIRE', key, window)
		end

		local remaining = limit - new_count
		local ttl = redis.call('TTL', key)
		local reset_at = current_time + ttl

		return {1, remaining, reset_at}
	`)

	result, err := script.Run(
		ctx,
		rl.redis,
		[]string{key},
		rl.limit.RequestsPerMinute,
		int(rl.limit.Window.Seconds()),
		time.Now().Unix(),
	).Result()

	if err != nil {
		return false, 0, 0, fmt.Errorf("failed to execute rate limit script: %w", err)
	}

	values := result.([]interface{})
	allowed = values[0].(int64) == 1
	remaining = int(values[1].(int64))
	resetAt = values[2].(int64)

	return allowed, remaining, resetAt, nil
}
