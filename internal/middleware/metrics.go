package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"hazmate/internal/metrics"
)

// Metrics records request count and latency by route template. Requests
// that matched no route share the "unmatched" label.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
