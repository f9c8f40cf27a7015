package handlers

import (
	"net/http"

	"github.com/fxstream/trade-consumer/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type BaseHandler struct {
	logger *zap.Logger
	db     *database.DB
	redis  *redis.Client
}

func NewBaseHandler(logger *zap.Logger, db *database.DB, redisClient *redis.Client) *BaseHandler {
	return &BaseHandler{logger: logger, db: db, redis: redisClient}
}

func (b *BaseHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", b.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// GetHealth reports liveness of the service and its collaborators.
func (b *BaseHandler) GetHealth(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "ok"
	redisStatus := "ok"

	if b.db != nil {
		var one int
		if err := b.db.QueryRow(c.Request.Context(), "SELECT 1").Scan(&one); err != nil {
			b.logger.Warn("health: database check failed", zap.Error(err))
			dbStatus = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	if b.redis != nil {
		if err := b.redis.Ping(c.Request.Context()).Err(); err != nil {
			b.logger.Warn("health: redis check failed", zap.Error(err))
			redisStatus = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, gin.H{
		"status":   http.StatusText(status),
		"database": dbStatus,
		"redis":    redisStatus,
	})
}
