package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kungpiyaphon/note-app-api/pkg/metrics"
)

// RequestMetrics counts every handled request by method and response status.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		metrics.HTTPRequests.
			WithLabelValues(c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Inc()
	}
}
