// Package health provides liveness and readiness probe endpoints.
package health

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Status represents the probe status.
type Status string

const (
	// StatusHealthy indicates the service is serving.
	StatusHealthy Status = "healthy"
	// StatusDraining indicates the service is shutting down and should
	// be removed from rotation.
	StatusDraining Status = "draining"
)

// Response is the probe response body.
type Response struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Checker reports process liveness and readiness. It carries no
// dependency checks: the gatekeeper holds no downstream connections,
// so readiness only flips during drain.
type Checker struct {
	version   string
	startTime time.Time
	mu        sync.RWMutex
	draining  bool
}

// NewChecker creates a checker stamped with the build version.
func NewChecker(version string) *Checker {
	return &Checker{
		version:   version,
		startTime: time.Now(),
	}
}

// SetDraining marks the process as draining so readiness probes fail
// while in-flight requests finish.
func (c *Checker) SetDraining(draining bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draining = draining
}

// Draining reports whether the process is draining.
func (c *Checker) Draining() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draining
}

func (c *Checker) response() Response {
	status := StatusHealthy
	if c.Draining() {
		status = StatusDraining
	}
	return Response{
		Status:    status,
		Version:   c.version,
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Timestamp: time.Now(),
	}
}

// LivenessHandler answers liveness probes. It reports healthy for the
// whole process lifetime, drain included.
func (c *Checker) LivenessHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		resp := c.response()
		resp.Status = StatusHealthy
		ctx.JSON(http.StatusOK, resp)
	}
}

// ReadinessHandler answers readiness probes. It returns 503 while the
// process is draining.
func (c *Checker) ReadinessHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		resp := c.response()
		code := http.StatusOK
		if resp.Status == StatusDraining {
			code = http.StatusServiceUnavailable
		}
		ctx.JSON(code, resp)
	}
}
