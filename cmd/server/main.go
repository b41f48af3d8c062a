package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clinlix/service-booking/internal/application"
	"github.com/clinlix/service-booking/internal/config"
	bookingDomain "github.com/clinlix/service-booking/internal/domain/booking"
	bookingEvents "github.com/clinlix/service-booking/internal/events"
	"github.com/clinlix/service-booking/internal/gateway"
	"github.com/clinlix/service-booking/internal/handler"
	"github.com/clinlix/service-booking/internal/repository"
	"github.com/clinlix/service-booking/internal/tasks"
	"github.com/clinlix/service-booking/pkg/auth"
	"github.com/clinlix/service-booking/pkg/database"
	"github.com/clinlix/service-booking/pkg/health"
	"github.com/clinlix/service-booking/pkg/kafka"
	"github.com/clinlix/service-booking/pkg/logger"
	"github.com/clinlix/service-booking/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.CancellationModel{},
			&repository.ServicePackageModel{},
			&repository.AddonModel{},
			&repository.ProviderProfileModel{},
			&repository.ProviderAvailabilityModel{},
			&repository.AddressModel{},
			&repository.NotificationModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := dbConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize Redis client (catalog cache)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})
	defer func() { _ = redisClient.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	catalogRepo := repository.NewCachedCatalogRepository(
		repository.NewGormCatalogRepository(db),
		redisClient,
		log,
	)
	providerRepo := repository.NewGormProviderRepository(db)
	addressRepo := repository.NewGormAddressRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)

	// Initialize gateways
	refundGateway := gateway.NewStripeRefundGateway(cfg.StripeConfig.APIKey, log)
	notifier := gateway.NewPersistentNotifier(notificationRepo, kafkaProducer, log)
	mailer := gateway.NewSMTPMailer(cfg.SMTPConfig, log)
	scheduler := tasks.NewScheduler(cfg.RedisConfig, log)
	defer func() { _ = scheduler.Close() }()

	// Initialize application services
	bookingService := application.NewBookingService(application.BookingServiceDeps{
		Bookings:  bookingRepo,
		Catalog:   catalogRepo,
		Providers: providerRepo,
		Addresses: addressRepo,
		Refunds:   refundGateway,
		Notifier:  notifier,
		Mailer:    mailer,
		Scheduler: scheduler,
		Schedule:  bookingDomain.DefaultRefundSchedule(),
		Producer:  kafkaProducer,
		Logger:    log,
	})
	addressService := application.NewAddressService(addressRepo, log)
	notificationService := application.NewNotificationService(notificationRepo, log)

	// Start the deadline worker processing declined-booking expiries
	deadlineWorker := tasks.NewWorker(cfg.RedisConfig, bookingService, log)
	if err := deadlineWorker.Start(); err != nil {
		log.Fatal("failed to start deadline worker", zap.Error(err))
	}
	defer deadlineWorker.Shutdown()

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	addressHandler := handler.NewAddressHandler(addressService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	catalogHandler := handler.NewCatalogHandler(catalogRepo)
	adminHandler := handler.NewAdminHandler(bookingService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	addressHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	notificationHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	catalogHandler.RegisterRoutes(&router.RouterGroup)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
