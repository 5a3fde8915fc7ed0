package middleware

import (
	"net/http"
	"strconv"
	"time"

	"taskflow/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter shares client with the limiters. A nil client switches
// every limiter to its in-process fallback.
func InitRedisRateLimiter(client *redis.Client) {
	redisClient = client
}

// KeyFunc identifies who a request is counted against. ok=false rejects the
// request as unauthenticated.
type KeyFunc func(c *gin.Context) (key string, ok bool)

func ByIP(c *gin.Context) (string, bool) {
	return c.ClientIP(), true
}

// ByUser requires JWT to have run first.
func ByUser(c *gin.Context) (string, bool) {
	id := UserID(c)
	return id, id != ""
}

// RedisRateLimit implements a fixed-window limiter using Redis INCR/EXPIRE.
// Any counter found without a TTL gets one, so a window always ends.
// key format: rl:<scope>:<window_seconds>:<identifier>
// Redis errors fail open; without Redis a token bucket per process is used.
func RedisRateLimit(scope string, maxRequests int, window time.Duration, keyFn KeyFunc) gin.HandlerFunc {
	local := newLocalLimiter(maxRequests, window)
	windowSecs := strconv.FormatInt(int64(window.Seconds()), 10)

	return func(c *gin.Context) {
		ident, ok := keyFn(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		endpoint := scope + ":" + c.FullPath()

		if redisClient == nil {
			if !local.allow(ident) {
				block(c, endpoint, window)
				return
			}
			RLRequests.WithLabelValues(endpoint).Inc()
			c.Next()
			return
		}

		key := "rl:" + scope + ":" + windowSecs + ":" + ident
		ctx := c.Request.Context()

		var (
			incr *redis.IntCmd
			ttl  *redis.DurationCmd
		)
		_, err := redisClient.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			ttl = pipe.TTL(ctx, key)
			return nil
		})
		if err == nil && ttl.Val() < 0 {
			// first hit of the window, or an earlier EXPIRE was lost
			err = redisClient.Expire(ctx, key, window).Err()
		}
		if err != nil {
			logger.WithContext(ctx).Warn("rate limiter redis error", "error", err, "scope", scope)
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		val := incr.Val()

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			block(c, endpoint, window)
			return
		}

		RLRequests.WithLabelValues(endpoint).Inc()
		c.Next()
	}
}

func block(c *gin.Context, endpoint string, window time.Duration) {
	RLBlocked.WithLabelValues(endpoint).Inc()
	c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       "rate limit exceeded",
		"retry_after": int(window.Seconds()),
	})
}
