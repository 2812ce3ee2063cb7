package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/ingestvault/pkg/metrics"
)

// PrometheusMiddleware 记录每个请求的计数与耗时.
// path 标签用路由模板 (如 /api/v1/processes/:id) 而非原始路径, 控制标签基数.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		method := c.Request.Method
		metrics.RequestCounter.WithLabelValues(method, path).Inc()
		metrics.RequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
