package middleware

import (
	"github.com/fxstream/trade-consumer/pkg"
	"github.com/fxstream/trade-consumer/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceID returns Gin middleware to handle trace IDs for observability.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.Request.Header.Get(pkg.HeaderTraceId)
		if utils.IsEmpty(traceID) {
			traceID = uuid.New().String()
		}
		// Set in context for handlers/services and propagate to the client.
		c.Set(pkg.TraceId, traceID)
		c.Writer.Header().Set(pkg.HeaderTraceId, traceID)
		c.Next()
	}
}
