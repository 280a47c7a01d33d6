package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"delivery-service/controllers"
	"delivery-service/database"
	"delivery-service/pkg/awsutil"
	"delivery-service/repository"
	"delivery-service/routes"
	servicepkg "delivery-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if err := database.ConnectDelivery(cfg.DeliveryMongoURL, cfg.DeliveryMongoDB); err != nil {
		logger.Fatal("Failed to connect to delivery database", zap.Error(err))
	}
	if err := database.ConnectOrder(cfg.OrderMongoURL, cfg.OrderMongoDB); err != nil {
		logger.Fatal("Failed to connect to order database", zap.Error(err))
	}
	defer database.Close() //nolint:errcheck

	redisClient := database.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close() //nolint:errcheck

	// Optional Postgres write-through for driver location snapshots.
	var snapshotRepo repository.LocationSnapshotRepository
	if cfg.LocationEnabled() {
		if err := database.ConnectLocation(
			cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser,
			cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
		); err != nil {
			logger.Fatal("Failed to connect to location database", zap.Error(err))
		}
		snapshotRepo = repository.NewGormLocationSnapshotRepository(database.LocationDB)
	} else {
		logger.Warn("Location snapshot store not configured, live positions will not survive restarts")
	}

	// AWS clients
	var snsClient awsutil.SNSPublisher
	if awsCfg, awsErr := awsutil.LoadAWSConfig(context.Background()); awsErr != nil {
		logger.Warn("AWS config unavailable, SNS disabled", zap.Error(awsErr))
	} else {
		snsClient = awsutil.NewSNSClient(awsCfg)
	}

	// DI chain
	deliveryRepo := repository.NewMongoDeliveryRepository(database.DeliveryDB)
	orderRepo := repository.NewMongoOrderRepository(database.OrderDB)
	notifier := servicepkg.NewRedisNotifier(redisClient)
	deliveryService := servicepkg.NewDeliveryService(
		deliveryRepo,
		orderRepo,
		notifier,
		snsClient,
		cfg.DeliverySNSTopicARN,
		logger,
	)
	locationHub := servicepkg.NewLocationHub(redisClient, snapshotRepo, logger)
	defer locationHub.Close()

	deliveryController := controllers.NewDeliveryController(deliveryService, locationHub)
	routingController := controllers.NewRoutingController(cfg.OSRMUpstreamURL, logger)

	// Order event intake
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if cfg.KafkaEnabled() {
		consumer := servicepkg.NewOrderEventsConsumer(
			cfg.KafkaBrokers, cfg.KafkaOrdersTopic, cfg.KafkaGroupID,
			deliveryService, logger,
		)
		defer consumer.Close() //nolint:errcheck
		go consumer.Start(consumerCtx)
	} else {
		logger.Warn("Kafka not configured, order event intake disabled")
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// Global request-logging middleware
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
		)
	})

	// 30-second request timeout
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "delivery-service"})
	})

	routes.RegisterDeliveryRoutes(r, deliveryController, routingController)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Delivery service started", zap.String("port", cfg.Port))
	<-quit
	logger.Info("Shutting down delivery service...")

	stopConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited cleanly")
}
