package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/edgegard/gatekeeper/internal/origin"
)

func newCORSRouter(cfg CORSConfig, handlerCalled *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	handler := func(c *gin.Context) {
		if handlerCalled != nil {
			*handlerCalled = true
		}
		c.String(http.StatusOK, "OK")
	}
	router.GET("/test", handler)
	router.POST("/test", handler)
	return router
}

func TestClassify(t *testing.T) {
	assert.Equal(t, statePreflight, classify(http.MethodOptions))
	assert.Equal(t, stateNormal, classify(http.MethodGet))
	assert.Equal(t, stateNormal, classify(http.MethodPost))
	assert.Equal(t, stateNormal, classify(http.MethodDelete))
}

func TestPreflightShortCircuits(t *testing.T) {
	handlerCalled := false
	cfg := DefaultCORSConfig()
	cfg.Policy = origin.NewPolicy([]string{"https://app.example.com"})
	router := newCORSRouter(cfg, &handlerCalled)

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.False(t, handlerCalled, "preflight must never reach the handler")

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS, PATCH", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Origin, Content-Type, Content-Length, Accept, Authorization, X-Requested-With, X-Client-Identity",
		w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}

func TestPreflightWithoutOriginStillShortCircuits(t *testing.T) {
	handlerCalled := false
	router := newCORSRouter(DefaultCORSConfig(), &handlerCalled)

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, handlerCalled)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestNormalRequestReachesHandler(t *testing.T) {
	handlerCalled := false
	cfg := DefaultCORSConfig()
	cfg.Policy = origin.NewPolicy([]string{"*.example.com"})
	router := newCORSRouter(cfg, &handlerCalled)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://api.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, handlerCalled)
	assert.Equal(t, "https://api.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLiteralOriginEchoedNeverWildcard(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.Policy = origin.NewPolicy([]string{"*.example.com"})
	cfg.AllowCredentials = true
	router := newCORSRouter(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestDisallowedOriginGetsNoAllowOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.Policy = origin.NewPolicy([]string{"*.example.com"})
	cfg.AllowCredentials = true
	router := newCORSRouter(cfg, nil)

	tests := []struct {
		name   string
		origin string
	}{
		{name: "unrelated origin", origin: "https://evil.com"},
		{name: "suffix without dot boundary", origin: "https://evilexample.com"},
		{name: "no origin header", origin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
			// The fixed header set is present regardless.
			assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
			assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Headers"))
			assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
		})
	}
}

func TestCredentialsHeaderOmittedWhenDisabled(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.Policy = origin.NewPolicy([]string{"https://app.example.com"})
	cfg.AllowCredentials = false
	router := newCORSRouter(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSConvenienceConstructor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS("https://app.example.com"))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
