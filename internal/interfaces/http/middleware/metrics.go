package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ServerRecorder receives one observation per handled request
type ServerRecorder interface {
	ObserveServerRequest(method, route string, status int, d time.Duration)
}

// HTTPMetrics returns a middleware that records request count and latency
// labelled by method, route pattern and status. A nil recorder disables it.
func HTTPMetrics(recorder ServerRecorder) gin.HandlerFunc {
	if recorder == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		recorder.ObserveServerRequest(c.Request.Method, getRoutePattern(c), c.Writer.Status(), time.Since(start))
	}
}

// getRoutePattern returns the route pattern (e.g. "/api/backgroundjobs/:id/status")
// instead of the actual path to keep label cardinality bounded.
func getRoutePattern(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		return "unknown"
	}
	return route
}
