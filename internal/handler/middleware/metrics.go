package middleware

import (
	"strconv"
	"time"

	"chairtime/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware labels by route template, not raw path, so path
// parameters do not explode the cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
