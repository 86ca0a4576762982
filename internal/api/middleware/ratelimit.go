package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"aiResume/internal/errcode"
)

// RateCounter is the subset of the Redis client used for fixed-window counters.
type RateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

func incrWithTTL(ctx context.Context, client RateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}

// HourlyRateLimit 按客户端 IP 统计每小时请求数，超过 limit 返回 429。
// Redis 不可用时放行请求，只记录告警。
func HourlyRateLimit(client RateCounter, scope string, limit int, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		window := now().UTC()
		key := fmt.Sprintf("airesume:ratelimit:%s:%s:%s", scope, c.ClientIP(), window.Format("2006010215"))
		count, err := incrWithTTL(c.Request.Context(), client, key, time.Hour)
		if err != nil {
			LoggerFromContext(c).Warn("rate limit counter unavailable", slog.Any("error", err))
			c.Next()
			return
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			reset := window.Truncate(time.Hour).Add(time.Hour)
			c.Header("Retry-After", strconv.Itoa(int(reset.Sub(window).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many generation requests. Please try again later.",
				"code":    errcode.RateLimited,
			})
			return
		}
		c.Next()
	}
}
