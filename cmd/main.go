package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisAdapter "github.com/bozormedia/classifieds-service/internal/adapter/cache/redis"
	"github.com/bozormedia/classifieds-service/internal/adapter/directory/natsdir"
	mongoAdapter "github.com/bozormedia/classifieds-service/internal/adapter/mongo"
	natsAdapter "github.com/bozormedia/classifieds-service/internal/adapter/nats"
	s3Adapter "github.com/bozormedia/classifieds-service/internal/adapter/storage/s3"
	"github.com/bozormedia/classifieds-service/internal/config"
	"github.com/bozormedia/classifieds-service/internal/mailer"
	"github.com/bozormedia/classifieds-service/internal/platform/logger"
	"github.com/bozormedia/classifieds-service/internal/platform/metrics"
	"github.com/bozormedia/classifieds-service/internal/platform/tracer"
	"github.com/bozormedia/classifieds-service/internal/usecase"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const serviceName = "classifieds_service"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	configPath := "config.yaml"
	if cp := os.Getenv("CONFIG_PATH"); cp != "" {
		configPath = cp
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewLogger()
	defer appLogger.Sync()

	appLogger.Info("Configuration loaded",
		zap.String("mongo_uri", cfg.Mongo.URI),
		zap.String("mongo_database", cfg.Mongo.Database),
		zap.String("nats_url", cfg.NATS.URL),
	)

	tp := tracer.InitTracer(serviceName)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shut down tracer provider", zap.Error(err))
		}
	}()

	mongoClient, err := mongoAdapter.NewMongoDBConnection(&cfg.Mongo)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appLogger.Info("Successfully connected to MongoDB")

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongoAdapter.EnsureIndexes(indexCtx, mongoClient.Database(cfg.Mongo.Database)); err != nil {
		cancelIndex()
		appLogger.Fatal("Failed to ensure MongoDB indexes", zap.Error(err))
	}
	cancelIndex()

	redisClient, err := redisAdapter.NewRedisClient(&cfg.Redis, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	cacheRepo := redisAdapter.NewRedisCacheRepository(redisClient, appLogger)

	publisher, err := natsAdapter.NewNATSPublisher(&cfg.NATS, appLogger.Logger)
	if err != nil {
		appLogger.Fatal("Failed to connect NATS publisher", zap.Error(err))
	}
	defer publisher.Close()

	userDirectory, err := natsdir.NewClient(&cfg.NATS, appLogger.Logger)
	if err != nil {
		appLogger.Fatal("Failed to connect NATS user directory client", zap.Error(err))
	}
	defer userDirectory.Close()

	fileStorage, err := s3Adapter.NewS3Storage(&cfg.S3, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	smtpMailer := mailer.NewSMTPMailer(&cfg.SMTP, appLogger)

	metricsManager := metrics.NewMetricsManager(serviceName)
	go func() {
		if err := metrics.StartMetricsServer(cfg.Metrics.Port, appLogger, metricsManager.Registry); err != nil {
			appLogger.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	listingRepo := mongoAdapter.NewListingMongoRepository(mongoClient, cfg.Mongo.Database)
	conversationRepo := mongoAdapter.NewConversationMongoRepository(mongoClient, cfg.Mongo.Database)
	messageRepo := mongoAdapter.NewMessageMongoRepository(mongoClient, cfg.Mongo.Database)
	favoriteRepo := mongoAdapter.NewFavoriteMongoRepository(mongoClient, cfg.Mongo.Database)
	uow := mongoAdapter.NewMongoUnitOfWork(mongoClient)

	lifecycleUC := usecase.NewLifecycleUsecase(listingRepo, uow, cacheRepo, publisher, metricsManager, appLogger, cfg.Listing.BumpCooldown)
	imageUC := usecase.NewImageUsecase(listingRepo, uow, fileStorage, appLogger)
	moderationUC := usecase.NewModerationUsecase(listingRepo, uow, cacheRepo, publisher, metricsManager, smtpMailer, userDirectory, appLogger)
	favoriteUC := usecase.NewFavoriteUsecase(favoriteRepo, listingRepo, uow, metricsManager, appLogger)
	conversationUC := usecase.NewConversationUsecase(conversationRepo, messageRepo, listingRepo, uow, userDirectory, publisher, metricsManager, appLogger)

	_ = lifecycleUC
	_ = imageUC
	_ = moderationUC
	_ = favoriteUC
	_ = conversationUC
	appLogger.Info("Use cases initialized; service ready")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	appLogger.Info("Shutdown signal received, stopping service")
}
