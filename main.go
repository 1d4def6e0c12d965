package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/quickbasket/storefront/config"
	"github.com/quickbasket/storefront/controllers"
	"github.com/quickbasket/storefront/database"
	kafka_pkg "github.com/quickbasket/storefront/kafka"
	"github.com/quickbasket/storefront/logger"
	"github.com/quickbasket/storefront/middleware"
	"github.com/quickbasket/storefront/models"
	"github.com/quickbasket/storefront/notifier"
	"github.com/quickbasket/storefront/notifier/sender"
	aws_pkg "github.com/quickbasket/storefront/pkg/aws"
	"github.com/quickbasket/storefront/repository"
	"github.com/quickbasket/storefront/routes"
	"github.com/quickbasket/storefront/services"
)

const productCacheTTL = 10 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger.Initialize(cfg.AppEnv)
	defer logger.Log.Sync()

	// Postgres holds carts, orders, and notification logs.
	db, err := database.ConnectPostgres(cfg.PostgresDSN(), logger.Log,
		&models.CartItem{}, &models.Order{}, &models.OrderItem{}, &models.NotificationLog{})
	if err != nil {
		logger.Log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.ClosePostgres(db)

	// Mongo is the read-only product catalog.
	mongoClient, mongoDB, err := database.ConnectMongo(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer database.CloseMongo(mongoClient)
	logger.Log.Info("Connected to MongoDB")

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Log.Info("Connected to Redis")

	pricing := services.PricingPolicy{
		FreeShippingThresholdCents: cfg.FreeShippingThresholdCents,
		FlatShippingFeeCents:       cfg.FlatShippingFeeCents,
		TaxRateBps:                 cfg.TaxRateBps,
		Currency:                   cfg.Currency,
	}

	cartRepo := repository.NewGormCartRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)
	productRepo := repository.NewCachedProductRepository(
		repository.NewMongoProductRepository(mongoDB), redisClient, productCacheTTL)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	stripeService := services.NewStripeService(cfg.StripeAPIKey, cfg.StripeWebhookSecret, cfg.BaseURL)

	publisher, notifierConsumer, busCleanup := buildEventBus(rootCtx, cfg, notificationRepo)

	cartService := services.NewCartService(cartRepo, productRepo, pricing, cfg.CartTTL)
	checkoutService := services.NewCheckoutService(cartService, stripeService)
	materializer := services.NewOrderMaterializer(orderRepo, pricing, publisher, cfg.DeliveryEstimateDays)
	orderService := services.NewOrderService(orderRepo)
	productService := services.NewProductService(productRepo)

	if notifierConsumer != nil {
		go func() {
			if err := notifierConsumer(rootCtx); err != nil && rootCtx.Err() == nil {
				logger.Log.Error("Notifier consumer stopped", zap.Error(err))
			}
		}()
	}

	// Hourly sweep of expired cart lines.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				cartService.SweepExpired(rootCtx)
			}
		}
	}()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Admin-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(router,
		controllers.NewProductController(productService),
		controllers.NewCartController(cartService),
		controllers.NewCheckoutController(checkoutService),
		controllers.NewWebhookController(stripeService, materializer),
		controllers.NewOrderController(orderService),
		cfg.AdminAPIKey,
		middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, 5*time.Minute).Middleware(),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("Storefront is running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("Shutting down gracefully")
	rootCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Shutdown error", zap.Error(err))
	}
	// In-flight webhook handlers have finished; flush any buffered events.
	if busCleanup != nil {
		busCleanup()
	}
	logger.Log.Info("Server shutdown complete")
}

// buildEventBus wires the order event publisher and the matching notifier
// consumer for the configured transport. The cleanup func, if any, flushes
// and closes the publisher on shutdown.
func buildEventBus(ctx context.Context, cfg *config.Config, notificationRepo repository.NotificationRepository) (services.EventPublisher, func(context.Context) error, func()) {
	emailSender, err := sender.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	if err != nil {
		logger.Log.Warn("SMTP not configured, order confirmations disabled", zap.Error(err))
	}

	var orderNotifier *notifier.Notifier
	if emailSender != nil {
		orderNotifier, err = notifier.New(notificationRepo, emailSender, "templates/order_confirmation.html")
		if err != nil {
			logger.Log.Fatal("Failed to initialize notifier", zap.Error(err))
		}
	}

	switch cfg.EventBus {
	case "kafka":
		producer := kafka_pkg.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.OrderEventsTopic)
		closeProducer := func() {
			if err := producer.Close(); err != nil {
				logger.Log.Warn("Kafka producer close failed", zap.Error(err))
			}
		}
		if orderNotifier == nil {
			return producer, nil, closeProducer
		}
		consumer := notifier.NewKafkaConsumer(cfg.KafkaBrokers, cfg.OrderEventsTopic, orderNotifier)
		return producer, consumer.Start, closeProducer

	default: // sns
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
		if err != nil {
			logger.Log.Fatal("Failed to load AWS config", zap.Error(err))
		}
		publisher := services.NewSNSEventPublisher(aws_pkg.NewSNSClient(awsCfg), cfg.OrderEventsTopicARN)
		if orderNotifier == nil || cfg.NotificationQueueURL == "" {
			return publisher, nil, nil
		}
		queue := aws_pkg.NewSQSConsumer(awsCfg, cfg.NotificationQueueURL)
		consumer := notifier.NewSQSConsumer(queue, orderNotifier)
		return publisher, consumer.Start, nil
	}
}
