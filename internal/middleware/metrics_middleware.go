package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver records request latencies.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

// RequestMetrics records the latency of every routed request, labelled by
// route pattern rather than raw path.
func RequestMetrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
