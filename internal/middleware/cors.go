package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edgegard/gatekeeper/internal/observability"
	"github.com/edgegard/gatekeeper/internal/origin"
)

// requestState classifies a request for CORS handling: a preflight is
// short-circuited with an empty body, everything else reaches the
// downstream handler. Both states share the header-setting step.
type requestState int

const (
	stateNormal requestState = iota
	statePreflight
)

// classify returns the CORS state for an HTTP method.
func classify(method string) requestState {
	if method == http.MethodOptions {
		return statePreflight
	}
	return stateNormal
}

// Allowed CORS methods and headers are fixed policy, not per-route
// configuration. The identity header is the one custom entry.
var (
	corsAllowMethods = []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
		http.MethodPatch,
	}

	corsAllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Content-Length",
		"Accept",
		"Authorization",
		"X-Requested-With",
		"X-Client-Identity",
	}
)

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	// Policy decides which origins are allowed. Required.
	Policy *origin.Policy

	// AllowCredentials controls Access-Control-Allow-Credentials for
	// allowed origins.
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int

	// Metrics records CORS counters when set.
	Metrics *observability.Metrics
}

// DefaultCORSConfig returns a CORS config with an empty allow-list
// (every cross-origin request denied) and a 24 hour preflight cache.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Policy:           origin.NewPolicy(nil),
		AllowCredentials: false,
		MaxAge:           86400, // 24 hours
	}
}

// CORS returns a CORS middleware allowing the given origins.
func CORS(allowOrigins ...string) gin.HandlerFunc {
	cfg := DefaultCORSConfig()
	cfg.Policy = origin.NewPolicy(allowOrigins)
	cfg.AllowCredentials = true
	return CORSWithConfig(cfg)
}

// CORSWithConfig returns a CORS middleware with custom configuration.
// Preflight requests never reach the downstream handler: they are
// answered immediately with 204 and an empty body. The CORS header set
// is written for both states before the request proceeds.
func CORSWithConfig(config CORSConfig) gin.HandlerFunc {
	if config.Policy == nil {
		config.Policy = origin.NewPolicy(nil)
	}

	// Pre-compute the fixed header values.
	allowMethodsStr := strings.Join(corsAllowMethods, ", ")
	allowHeadersStr := strings.Join(corsAllowHeaders, ", ")
	maxAgeStr := strconv.Itoa(config.MaxAge)

	return func(c *gin.Context) {
		requestOrigin := c.Request.Header.Get("Origin")

		if config.Policy.Allowed(requestOrigin) {
			// Echo the literal origin, never "*", so credentialed
			// requests keep working.
			c.Header("Access-Control-Allow-Origin", requestOrigin)
			if config.AllowCredentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
			if config.Metrics != nil {
				config.Metrics.RecordOriginDecision(true)
			}
		} else if requestOrigin != "" && config.Metrics != nil {
			config.Metrics.RecordOriginDecision(false)
		}

		c.Header("Access-Control-Allow-Methods", allowMethodsStr)
		c.Header("Access-Control-Allow-Headers", allowHeadersStr)
		c.Header("Access-Control-Max-Age", maxAgeStr)

		switch classify(c.Request.Method) {
		case statePreflight:
			if config.Metrics != nil {
				config.Metrics.RecordPreflight()
			}
			c.AbortWithStatus(http.StatusNoContent)
		case stateNormal:
			c.Next()
		}
	}
}
