package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/pkg/metrics"
)

// Metrics HTTP请求指标中间件
// 教学要点：
// 1. path使用路由模板（c.FullPath()），不用真实URL，
//    否则/api/v1/books/BK123会把每本书打成一个独立标签（高基数灾难）
// 2. 请求前Inc在途计数，defer保证异常路径也会Dec
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics.HTTPRequestsTotal == nil {
			c.Next()
			return
		}

		start := time.Now()
		metrics.HTTPRequestsInProgress.Inc()
		defer metrics.HTTPRequestsInProgress.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched" // 404等未命中路由的请求归为一类
		}

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
		).Observe(time.Since(start).Seconds())
	}
}
