package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-courses/internal/service"
)

// Metrics returns middleware that captures request metrics using the provided
// service. Static assets and the metrics endpoint itself are not recorded, and
// requests that match no route share a single path label.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || skipMetrics(c.Request.URL.Path) {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

func skipMetrics(path string) bool {
	return path == "/metrics" || strings.HasPrefix(path, "/static/")
}
