package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"portfolio/internal/errcode"
)

// IPRateLimiter 为每个客户端 IP 维护一个令牌桶。
type IPRateLimiter struct {
	limiters *gocache.Cache
	limit    rate.Limit
	burst    int
}

// NewIPRateLimiter 按每分钟 perMinute 次、突发 burst 次构造限流器。
func NewIPRateLimiter(perMinute, burst int) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		limiters: gocache.New(10*time.Minute, 20*time.Minute),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
	}
}

// Allow 为 ip 消耗一个令牌。
func (l *IPRateLimiter) Allow(ip string) bool {
	if cached, found := l.limiters.Get(ip); found {
		limiter := cached.(*rate.Limiter)
		l.limiters.SetDefault(ip, limiter)
		return limiter.Allow()
	}

	limiter := rate.NewLimiter(l.limit, l.burst)
	if err := l.limiters.Add(ip, limiter, gocache.DefaultExpiration); err != nil {
		// 并发创建时以先写入者为准
		if cached, found := l.limiters.Get(ip); found {
			limiter = cached.(*rate.Limiter)
		}
	}
	return limiter.Allow()
}

// RateLimit 在令牌耗尽时返回 429。l 为 nil 时不限流。
func RateLimit(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l != nil && !l.Allow(c.ClientIP()) {
			LoggerFromContext(c).Warn("request throttled")
			abortWith(c, errcode.ErrRateLimited)
			return
		}
		c.Next()
	}
}
