package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealflow-analyst/internal/analyst/config"
	"dealflow-analyst/internal/analyst/delivery/consumer"
	delivery "dealflow-analyst/internal/analyst/delivery/http"
	"dealflow-analyst/internal/analyst/repository"
	"dealflow-analyst/internal/analyst/service"
	"dealflow-analyst/pkg/common"
	"dealflow-analyst/pkg/keylock"
	"dealflow-analyst/pkg/logger"
	"dealflow-analyst/pkg/postgres"
	"dealflow-analyst/pkg/redis"
	"dealflow-analyst/pkg/telegram"

	"google.golang.org/genai"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the deal analyst service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Deal Analyst Service", zap.String("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Create the consumer groups if they don't exist
	// MKSTREAM creates the stream if it doesn't exist
	for _, stream := range []string{common.RedisStreamDocumentIngest, common.RedisStreamNoteRetry} {
		if err := redisClient.XGroupCreateMkStream(context.Background(), stream, common.RedisStreamGroup, "0").Err(); err != nil {
			if err.Error() != "BUSYGROUP Consumer Group name already exists" {
				appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err), logger.StringField("stream", stream))
			}
		}
	}

	// Initialize repositories
	docRepo := repository.NewRawDocumentRepository(db.DB)
	companyRepo := repository.NewCachingCompanyRepository(repository.NewCompanyRepository(db.DB), cfg.Engine.CompanyCacheTTL)
	noteRepo := repository.NewAnalystNoteRepository(db.DB)

	// Initialize AI provider
	var aiRepo repository.AIRepository
	switch cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", zap.Error(err))
		}
		repo, err := repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI repository", zap.Error(err))
		}
		aiRepo = repo
	default:
		appLogger.Fatal("Invalid AI provider specified in config", zap.String("provider", cfg.AI.Provider))
	}

	var telegramNotifier telegram.Notifier
	if cfg.Telegram.Enabled {
		telegramNotifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
		}
	}

	// Initialize services
	locks := keylock.New()
	reconciler := service.NewReconciler(cfg.Engine.ConfidenceMargin, appLogger)
	noteSvc := service.NewNoteService(cfg, appLogger, companyRepo, docRepo, noteRepo, aiRepo, locks, redisClient.Client, telegramNotifier)
	ingestSvc := service.NewIngestService(cfg, appLogger, docRepo, companyRepo, aiRepo, reconciler, noteSvc, locks, redisClient.Client)
	querySvc := service.NewQueryService(companyRepo, docRepo, noteRepo)

	// Initialize and start the Redis consumer
	redisConsumer := consumer.NewRedisConsumer(cfg, redisClient.Client, ingestSvc, noteSvc, appLogger)
	redisConsumer.Start(ctx)

	// Start the stale pending document sweeper
	sweeper := service.NewSweeper(cfg, appLogger, docRepo, ingestSvc)
	if err := sweeper.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start sweeper", zap.Error(err))
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")

	documentHandler := delivery.NewDocumentHandler(ingestSvc, querySvc, appLogger)
	documentHandler.RegisterRoutes(apiV1)

	companyHandler := delivery.NewCompanyHandler(querySvc, appLogger)
	companyHandler.RegisterRoutes(apiV1)

	noteHandler := delivery.NewNoteHandler(querySvc, noteSvc, appLogger)
	noteHandler.RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	sweeper.Stop()
	redisConsumer.Stop()

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "analyst-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analyst-service CLI: %s\n", err)
		os.Exit(1)
	}
}
