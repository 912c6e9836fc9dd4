package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"moneyrats/internal/config"
	"moneyrats/internal/database"
	"moneyrats/internal/logger"
	"moneyrats/internal/middleware"
	"moneyrats/internal/ratelimit"
	"moneyrats/internal/router"
	"moneyrats/internal/services"
	"moneyrats/internal/session"
	"moneyrats/internal/validator"
)

// @title           MoneyRats API
// @version         1.0
// @description     MoneyRats lets friends save together: join a group with an invite code, log contributions, and compete on saving effort.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig(appConfig)
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	rdb, err := connectRedis(appConfig)
	if err != nil {
		return err
	}

	var store session.Store
	var loginLimiter middleware.Limiter
	if rdb != nil {
		defer rdb.Close()
		store = session.NewRedisStore(rdb)
		loginLimiter = ratelimit.New(rdb, "login", appConfig.LoginRateLimit, appConfig.LoginRateBurst)
	} else {
		log.Warn("REDIS_ADDR not set; sessions cannot be revoked and login is not throttled")
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	lockout := services.LockoutPolicy{
		MaxAttempts: appConfig.MaxLoginAttempts,
		Duration:    appConfig.LockoutDuration,
	}

	engine := router.New(router.Deps{
		Users:         services.NewUserService(db, lockout),
		Groups:        services.NewGroupService(db),
		Savings:       services.NewSavingsService(db),
		Audit:         services.NewAuditService(db),
		Sessions:      session.NewManager(appConfig.SessionSecret, appConfig.SessionTTL, store),
		LoginLimiter:  loginLimiter,
		SecureCookie:  appConfig.CookieSecure,
		MetricsAPIKey: appConfig.MetricsAPIKey,
	})

	log.Infof("Starting MoneyRats server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return engine.Run(":" + appConfig.Port)
}

// connectRedis returns nil when no Redis address is configured.
func connectRedis(cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	logger.Get().Infow("Connected to redis", "addr", cfg.RedisAddr)
	return rdb, nil
}
