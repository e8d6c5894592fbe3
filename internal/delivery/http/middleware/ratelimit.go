package middleware

import (
	"net/http"
	"sync"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter ограничивает частоту запросов на пользователя
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	identity domain.IdentityProvider
	logger   *zap.Logger
}

func NewRateLimiter(requestsPerMinute float64, burst int, identity domain.IdentityProvider, logger *zap.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerMinute / 60),
		burst:    burst,
		identity: identity,
		logger:   logger,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := rl.identity.CurrentUser(c.Request.Context())
		if err != nil {
			key = c.ClientIP()
		}
		if !rl.getLimiter(key).Allow() {
			rl.logger.Warn("rate limit exceeded",
				zap.String("key", key),
				zap.String("path", c.FullPath()),
				zap.String("method", c.Request.Method))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": "RATE_LIMITED", "error": "too many requests"})
			return
		}
		c.Next()
	}
}
