package middleware

import (
	"net/http"
	"strconv"
	"time"

	"restaurant-app/internal/infra/cache"
	"restaurant-app/internal/infra/clientip"

	"github.com/gin-gonic/gin"
)

// RateLimitByIP allows limit requests per client ip per window.
func RateLimitByIP(name string, limit int, window time.Duration) gin.HandlerFunc {
	counter := cache.NewWindowCounter(100_000, window)
	retryAfter := int(window.Seconds())

	return func(c *gin.Context) {
		key := name + ":" + clientip.FromRequest(c.Request)
		if limit > 0 && !counter.Allow(key, limit) {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, slow down"})
			return
		}
		c.Next()
	}
}
