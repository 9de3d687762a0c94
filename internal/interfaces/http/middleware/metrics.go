package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"doc-qa-api/pkg/metrics"
)

// Metrics HTTP 指标采集中间件
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		if c.Request.ContentLength > 0 {
			metrics.HTTPRequestSize.WithLabelValues(c.Request.Method, path).
				Observe(float64(c.Request.ContentLength))
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size > 0 {
			metrics.HTTPResponseSize.WithLabelValues(c.Request.Method, path).
				Observe(float64(size))
		}
	}
}
