package config

import (
	"MedFund-Backend/internal/api/handlers"
	"MedFund-Backend/internal/api/routes"
	"MedFund-Backend/internal/cache"
	"MedFund-Backend/internal/middleware"
	"MedFund-Backend/internal/utils"
	"MedFund-Backend/internal/utils/mailing"
	"MedFund-Backend/internal/utils/storage"
	"MedFund-Backend/pkg/currency"
	"MedFund-Backend/pkg/donation"
	"MedFund-Backend/pkg/events"
	"MedFund-Backend/pkg/jwt"
	"MedFund-Backend/pkg/payment"
	"MedFund-Backend/pkg/request"
	"MedFund-Backend/pkg/user"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NewApp wires every service onto a fiber app. The returned func releases
// the broker, cache and log file connections.
func NewApp(db *gorm.DB) (*fiber.App, func(), error) {
	cfg := utils.Get()
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: !cfg.IsProd,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), os.ModePerm); err != nil {
		return nil, nil, fmt.Errorf("create logs directory: %w", err)
	}
	file, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   cfg.AppTimeZone,
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()
	mailer := mailing.NewNopMailer()
	if cfg.NotifyByEmail {
		mailer = mailing.NewMailer(mailing.LoadMailConfig())
	}

	publisher, err := events.Open(cfg.EventsBackend, cfg.KafkaBrokers, cfg.NATSURL)
	if err != nil {
		file.Close()
		return nil, nil, err
	}

	requestCache := cache.NewNopCache()
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warnf("redis unavailable, serving without read cache: %v", err)
		} else {
			requestCache = cache.NewRedisCache(redisClient, cache.DefaultTTL)
		}
	}

	var candidates []payment.Gateway
	if cfg.StripeSecretKey != "" {
		candidates = append(candidates, payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret))
	}
	if cfg.ServerKey != "" {
		candidates = append(candidates, payment.NewMidtransGateway(cfg.ServerKey, cfg.IsProd))
	}
	gateways := payment.Usable(cfg.BaseCurrency, candidates...)
	if len(gateways) == 0 {
		log.Warn("no payment gateway configured, donations cannot be collected")
	}

	converter := currency.NewConverter(currency.Config{
		RateURL:      cfg.ExchangeRateURL,
		Base:         cfg.BaseCurrency,
		Target:       cfg.DisplayCurrency,
		FallbackRate: decimal.NewFromFloat(cfg.FallbackRate),
		TTL:          time.Duration(cfg.ExchangeRateTTLS) * time.Second,
	})

	// Repository
	userRepository := user.NewUserRepository(db)
	requestRepository := request.NewRequestRepository(db)
	donationRepository := donation.NewDonationRepository(db)

	// Service
	jwtService := jwt.NewJWTService(cfg.JWTSecret)
	userService := user.NewUserService(userRepository, jwtService)
	requestService := request.NewRequestService(requestRepository, s3, mailer, publisher, requestCache, cfg.AppURL)
	donationService := donation.NewDonationService(donationRepository, requestRepository)
	paymentService := payment.NewPaymentService(
		donationRepository,
		requestRepository,
		requestService,
		publisher,
		cfg.PaymentProvider,
		cfg.BaseCurrency,
		gateways...,
	)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	requestHandler := handlers.NewRequestHandler(requestService, validator)
	donationHandler := handlers.NewDonationHandler(donationService, validator)
	paymentHandler := handlers.NewPaymentHandler(paymentService, validator)
	homeHandler := handlers.NewHomeHandler(converter)

	// routes
	routesConfig := routes.Config{
		App:             app,
		UserHandler:     userHandler,
		RequestHandler:  requestHandler,
		DonationHandler: donationHandler,
		PaymentHandler:  paymentHandler,
		HomeHandler:     homeHandler,
		Middleware:      middlewares,
		JWTService:      jwtService,
	}
	routesConfig.Setup()

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			log.Errorf("close event publisher: %v", err)
		}
		if redisClient != nil {
			redisClient.Close()
		}
		file.Close()
	}
	return app, cleanup, nil
}
