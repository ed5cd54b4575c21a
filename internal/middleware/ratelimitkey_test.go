package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/edgegard/gatekeeper/internal/ratelimit"
)

func TestRateLimitKeyMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var captured string
	router := gin.New()
	router.Use(RateLimitKey())
	router.GET("/test", func(c *gin.Context) {
		captured = RateLimitKeyFromContext(c)
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "1.2.3.4:5678"
	req.Header.Set("User-Agent", "curl/8.0")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, ratelimit.DeriveKey("1.2.3.4", "curl/8.0"), captured)
}

func TestRateLimitKeyStablePerClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	keys := make([]string, 0, 2)
	router := gin.New()
	router.Use(RateLimitKey())
	router.GET("/test", func(c *gin.Context) {
		keys = append(keys, RateLimitKeyFromContext(c))
		c.String(http.StatusOK, "OK")
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		req.Header.Set("User-Agent", "curl/8.0")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}

	assert.Len(t, keys, 2)
	assert.Equal(t, keys[0], keys[1])
}

func TestRateLimitKeyCustomDeriver(t *testing.T) {
	gin.SetMode(gin.TestMode)

	deriver := ratelimit.NewKeyDeriver(nil, "X-Client-Identity")
	var captured string
	router := gin.New()
	router.Use(RateLimitKeyWithConfig(RateLimitKeyConfig{Deriver: deriver}))
	router.GET("/test", func(c *gin.Context) {
		captured = RateLimitKeyFromContext(c)
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "1.2.3.4:5678"
	req.Header.Set("X-Client-Identity", "svc-a")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, ratelimit.DeriveKey("1.2.3.4", "svc-a"), captured)
}

func TestRateLimitKeyFromContextMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", RateLimitKeyFromContext(c))
}
