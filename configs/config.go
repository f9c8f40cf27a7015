package configs

import (
	"time"

	"github.com/fxstream/trade-consumer/pkg"
	"github.com/fxstream/trade-consumer/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Port          string `mapstructure:"PORT" validate:"required"`
	PrimaryDbAddr string `mapstructure:"PRIMARY_DB_ADDR" validate:"required"`
	ReplicaDbAddr string `mapstructure:"REPLICA_DB_ADDR"`
	MaxDbCons     int32  `mapstructure:"MAX_DB_CONNECTIONS" validate:"min=1"`
	MinDbCons     int32  `mapstructure:"MIN_DB_CONNECTIONS" validate:"min=1"`

	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"required"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	RateLimitMax        int `mapstructure:"RATE_LIMIT_MAX" validate:"min=1"`
	RateLimitTtlSeconds int `mapstructure:"RATE_LIMIT_TTL_SECONDS" validate:"min=1"`
	// Status returned on admission denial. Legacy clients expect 500;
	// 429 is the accurate choice.
	RateLimitStatus int `mapstructure:"RATE_LIMIT_STATUS" validate:"oneof=429 500"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"` // optional; empty disables publishing
	KafkaTradeTopic string `mapstructure:"KAFKA_TRADE_TOPIC"`
}

// RateLimitTTL returns the marker expiry as a duration.
func (c *Config) RateLimitTTL() time.Duration {
	return time.Duration(c.RateLimitTtlSeconds) * time.Second
}

func Load(logger *zap.Logger) (*Config, error) {
	viper.SetEnvPrefix("app") // Prefix for env vars
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("MAX_DB_CONNECTIONS", "10")
	viper.SetDefault("MIN_DB_CONNECTIONS", "2")
	viper.SetDefault("RATE_LIMIT_MAX", "100")
	viper.SetDefault("RATE_LIMIT_TTL_SECONDS", "60")
	viper.SetDefault("RATE_LIMIT_STATUS", pkg.ErrRateLimitCode.Status)
	viper.SetDefault("KAFKA_TRADE_TOPIC", "trade.message.accepted")

	// Optional: read from config.yaml if present
	if gin.ReleaseMode == gin.Mode() {
		viper.SetConfigName("config.prod")
	} else if gin.TestMode == gin.Mode() {
		logger.Warn("running in test mode")
		viper.SetConfigName("config.test")
	} else {
		logger.Warn("running in development mode")
		viper.SetConfigName("config.dev")
	}
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	_ = viper.ReadInConfig() // Ignore if no file

	var cfg Config
	if err := utils.ParseStructEnv(&cfg); err != nil {
		return nil, err
	}
	// Validate after unmarshal
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, utils.FormatConfigErrors(logger, err, cfg)
	}
	return &cfg, nil
}
