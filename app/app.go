package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fxstream/trade-consumer/configs"
	"github.com/fxstream/trade-consumer/internal/handlers"
	"github.com/fxstream/trade-consumer/internal/services"
	"github.com/fxstream/trade-consumer/pkg/cache"
	"github.com/fxstream/trade-consumer/pkg/database"
	middleware "github.com/fxstream/trade-consumer/pkg/middlewares"
	"github.com/fxstream/trade-consumer/pkg/ratelimit"
	"github.com/fxstream/trade-consumer/pkg/repositories"
	"github.com/fxstream/trade-consumer/pkg/utils"
	"github.com/fxstream/trade-consumer/pkg/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewApp wires dependencies, builds the Gin engine, and returns an
// *http.Server and a cleanup func. Configuration comes from the environment
// via configs.Load.
func NewApp(ctx context.Context, logger *zap.Logger) (*http.Server, func(), error) {
	cfg, err := configs.Load(logger)
	if err != nil {
		return nil, nil, err
	}

	// Postgres
	dbConfig := database.Config{
		PrimaryDSN: cfg.PrimaryDbAddr,
		ReadDSNs:   []string{cfg.ReplicaDbAddr},
		MaxConns:   cfg.MaxDbCons,
		MinConns:   cfg.MinDbCons,
	}
	db, disconnect, err := database.New(ctx, logger, dbConfig)
	if err != nil {
		return nil, nil, err
	}

	if err := database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
		disconnect()
		return nil, nil, err
	}

	// Redis rate-limit store
	redisClient, closeRedis, err := cache.New(ctx, cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		disconnect()
		return nil, nil, err
	}
	limiter := ratelimit.New(redisClient, cfg.RateLimitMax, cfg.RateLimitTTL(), logger)

	// Trade event publisher; disabled without brokers.
	var publisher services.TradePublisher = services.NoopPublisher{}
	if !utils.IsEmpty(cfg.KafkaBrokers) {
		publisher, err = services.NewKafkaPublisher(logger, cfg.KafkaBrokers, cfg.KafkaTradeTopic)
		if err != nil {
			closeRedis()
			disconnect()
			return nil, nil, err
		}
	}

	// Setup dependencies
	tradeRepo := repositories.NewTradeRepository(db)
	tradeService := services.NewTradeService(logger, validation.New(), tradeRepo, publisher)
	tradeHandler := handlers.NewTradeHandler(logger, tradeService)
	baseHandler := handlers.NewBaseHandler(logger, db, redisClient)

	// Router
	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"message": fmt.Sprintf("Status code: %d", http.StatusMethodNotAllowed),
		})
	})

	api := r.Group("/")
	api.Use(middleware.TraceID())
	api.Use(middleware.Metrics())
	api.Use(middleware.RateLimit(logger, limiter, cfg.RateLimitStatus))

	tradeHandler.RegisterRoutes(api)
	baseHandler.RegisterRoutes(r)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	cleanup := func() {
		publisher.Close()
		closeRedis()
		disconnect()
	}

	return srv, cleanup, nil
}
