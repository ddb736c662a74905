package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/adapters/transport/ratelimit"
	"github.com/gin-gonic/gin"
)

// NewHTTPRateLimitPerIP ограничивает RPS для Gin-ручек по IP клиента.
func NewHTTPRateLimitPerIP(
	ctx context.Context,
	limit, burst, cacheSize int,
	ttl time.Duration,
) gin.HandlerFunc {
	visitors := ratelimit.NewVisitors(ctx, limit, burst, cacheSize, ttl)

	return func(c *gin.Context) {
		if !visitors.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
