package middleware

import (
	"fmt"

	"github.com/fxstream/trade-consumer/pkg"
	"github.com/fxstream/trade-consumer/pkg/ratelimit"
	"github.com/fxstream/trade-consumer/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit returns Gin middleware that gates requests through the Redis
// admission-control limiter before any other processing. The client address
// resolves from X-Forwarded-For, falling back to the connection address.
// denyStatus is configurable; existing clients expect 500, new deployments
// should prefer 429.
func RateLimit(logger *zap.Logger, limiter *ratelimit.Limiter, denyStatus int) gin.HandlerFunc {
	return func(c *gin.Context) {
		addr := c.Request.Header.Get(pkg.HeaderForwardedFor)
		if utils.IsEmpty(addr) {
			addr = c.Request.RemoteAddr
		}

		admitted, err := limiter.Admit(c.Request.Context(), addr)
		if err != nil {
			logger.Error("rate limit store failure", zap.String("addr", addr), zap.Error(err))
			c.AbortWithStatusJSON(pkg.ErrServerCode.Status, gin.H{
				"message": fmt.Sprintf("Status code: %d", pkg.ErrServerCode.Status),
			})
			return
		}
		if !admitted {
			c.AbortWithStatusJSON(denyStatus, gin.H{
				"message": fmt.Sprintf("Status code: %d", denyStatus),
			})
			return
		}
		c.Next()
	}
}
