package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/edgegard/gatekeeper/internal/observability"
	"github.com/edgegard/gatekeeper/internal/ratelimit"
)

// rateLimitKeyContextKey is the gin context key holding the derived
// rate limit key.
const rateLimitKeyContextKey = "rateLimitKey"

// RateLimitKeyConfig holds configuration for the key derivation
// middleware.
type RateLimitKeyConfig struct {
	// Deriver derives the per-request key. Required.
	Deriver *ratelimit.KeyDeriver

	// Metrics records derivation counters when set.
	Metrics *observability.Metrics
}

// RateLimitKey returns a middleware that derives the rate limit key
// for each request with the default deriver.
func RateLimitKey() gin.HandlerFunc {
	return RateLimitKeyWithConfig(RateLimitKeyConfig{})
}

// RateLimitKeyWithConfig returns the key derivation middleware with
// custom configuration. The key is stored in the request context for
// whatever external rate-limit counter the host system maintains; no
// counting happens here.
func RateLimitKeyWithConfig(config RateLimitKeyConfig) gin.HandlerFunc {
	if config.Deriver == nil {
		config.Deriver = ratelimit.NewKeyDeriver(nil, "")
	}

	return func(c *gin.Context) {
		key := config.Deriver.FromRequest(c.Request)
		c.Set(rateLimitKeyContextKey, key)

		if config.Metrics != nil {
			config.Metrics.RecordKeyDerived()
		}

		c.Next()
	}
}

// RateLimitKeyFromContext returns the derived key for the current
// request, or "" when the middleware did not run.
func RateLimitKeyFromContext(c *gin.Context) string {
	if key, exists := c.Get(rateLimitKeyContextKey); exists {
		if s, ok := key.(string); ok {
			return s
		}
	}
	return ""
}
