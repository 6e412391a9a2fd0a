package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/salesync/reports_backend/utils"
)

const CorrelationIdHeader = "X-Correlation-ID"

// CorrelationMiddleware attaches the caller's X-Correlation-ID, or a fresh
// uuid, to the request context and echoes it in the response.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader(CorrelationIdHeader)
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Header(CorrelationIdHeader, cid)
		c.Next()
	}
}
