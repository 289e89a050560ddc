package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"inkwell/internal/apperr"
)

// 最多跟踪这么多个调用方，最久未活动的会被淘汰
const maxTrackedCallers = 10000

// RateLimiter hands out one token bucket per caller (user id, or client ip when anonymous).
type RateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perMinute writes per caller with a burst of the same size.
func NewRateLimiter(perMinute int) (*RateLimiter, error) {
	if perMinute <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d", perMinute)
	}
	cache, err := lru.New[string, *rate.Limiter](maxTrackedCallers)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{
		limiters: cache,
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}, nil
}

// Allow consumes one token for key.
func (r *RateLimiter) Allow(key string) bool {
	limiter, ok := r.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		// 并发下可能重复创建，以先写入的为准
		if prev, ok, _ := r.limiters.PeekOrAdd(key, limiter); ok {
			limiter = prev
		}
	}
	return limiter.Allow()
}

// Middleware rejects callers that exceeded their budget with 429.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if sess := CurrentSession(c); sess.IsAuthenticated() {
			key = fmt.Sprintf("user:%d", sess.UserID)
		}
		if !r.Allow(key) {
			AbortWithError(c, apperr.New(apperr.CodeRateLimited, "操作太频繁，请稍后再试"))
			return
		}
		c.Next()
	}
}
