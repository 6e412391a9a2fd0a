package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salesync/reports_backend/config"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one entry per request; 5xx responses and requests
// carrying gin errors are logged at error level.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := config.LoggerWithContext(c.Request.Context(), logger).WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
			return
		}
		if c.Writer.Status() >= 500 {
			entry.Error("request failed")
			return
		}
		entry.Info("request")
	}
}
