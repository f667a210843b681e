package main

import (
	"context"
	"log"
	"os"

	"starter-api/cmd"
	"starter-api/internal/data/repository"
	"starter-api/internal/wire"
	"starter-api/pkg/database"
	"starter-api/pkg/ratelimit"
	"starter-api/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("env", string(config.App.Env)),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx := context.Background()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if config.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Optional redis for rate limiting
	var redisClient *redis.Client
	if config.RateLimit.RedisURL != "" {
		redisClient, err = ratelimit.NewRedisClient(ctx, config.RateLimit.RedisURL)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	// Wire all dependencies
	app, err := wire.Wiring(repos, redisClient, config, logger)
	if err != nil {
		logger.Fatal("Failed to wire application", zap.Error(err))
	}

	if len(os.Args) > 1 && os.Args[1] == "sweep" {
		if err := cmd.Sweep(ctx, app.Service.OTP, logger); err != nil {
			logger.Fatal("OTP sweep failed", zap.Error(err))
		}
		return
	}

	// Start server
	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
	logger.Info("Server stopped")
}
