package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"hotel-backoffice/internal/core/redisx"
	resp "hotel-backoffice/internal/transport/http/response"
)

func tooMany(c *gin.Context, retry time.Duration) {
	if retry > 0 {
		c.Header("Retry-After", strconv.Itoa(int((retry+time.Second-1)/time.Second)))
	}
	resp.Abort(c, http.StatusTooManyRequests, resp.CodeTooManyRequests, "too many requests")
}

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		tooMany(c, 0)
	}
}

type ipLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimitPerIP 每 IP 限速（进程内），空闲超过 idle 的桶定期清理
func RateLimitPerIP(rps rate.Limit, burst int, idle time.Duration) gin.HandlerFunc {
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	var (
		mu        sync.Mutex
		buckets   = make(map[string]*ipLimiter)
		lastSweep = time.Now()
	)
	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		if now.Sub(lastSweep) > idle {
			for k, b := range buckets {
				if now.Sub(b.seen) > idle {
					delete(buckets, k)
				}
			}
			lastSweep = now
		}
		b, ok := buckets[ip]
		if !ok {
			b = &ipLimiter{lim: rate.NewLimiter(rps, burst)}
			buckets[ip] = b
		}
		b.seen = now
		allowed := b.lim.AllowN(now, 1)
		mu.Unlock()

		if allowed {
			c.Next()
			return
		}
		tooMany(c, 0)
	}
}

// RateLimitRedis 每 IP 限速，桶放在 Redis 中供多副本共享；Redis 不可用时放行并记录日志
func RateLimitRedis(b *redisx.TokenBucket, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := b.Allow(c.Request.Context(), "ip:"+c.ClientIP())
		if err != nil {
			l.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
		if d.Allowed {
			c.Next()
			return
		}
		tooMany(c, d.RetryAfter)
	}
}
