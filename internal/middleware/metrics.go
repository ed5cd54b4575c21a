package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edgegard/gatekeeper/internal/observability"
)

// Metrics returns a middleware that records request counters and
// latency histograms. A nil metrics instance disables recording.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		m.RecordRequest(c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
