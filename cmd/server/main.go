package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/clavisauth/clavis/configs"
	"github.com/clavisauth/clavis/internal/application/services"
	"github.com/clavisauth/clavis/internal/core/ports"
	"github.com/clavisauth/clavis/internal/infrastructure/db"
	"github.com/clavisauth/clavis/internal/infrastructure/email"
	"github.com/clavisauth/clavis/internal/infrastructure/health"
	"github.com/clavisauth/clavis/internal/infrastructure/httpserver"
	redisinfra "github.com/clavisauth/clavis/internal/infrastructure/redis"
	"github.com/clavisauth/clavis/internal/infrastructure/repositories"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting clavis authentication service...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Initialize Redis client
	redisClient, err := redisinfra.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// Ephemeral store backing all TTL-bound state
	store := redisinfra.NewStore(redisClient, "")

	// Repositories
	userRepo := repositories.NewUserRepository(database, logger)
	stagingRepo := repositories.NewStagingRepository(store, logger)
	tokenRepo := repositories.NewTokenRepository(store, logger)
	rateLimitRepo := repositories.NewRateLimitRepository(store)

	// Mail transport
	emailConfig := &email.EmailConfig{
		SendGridAPIKey: cfg.Email.SendGridAPIKey,
		FromEmail:      cfg.Email.FromEmail,
		FromName:       cfg.Email.FromName,
		AppName:        cfg.Email.AppName,
		FrontendURL:    cfg.Email.FrontendURL,
	}
	emailService, err := email.NewEmailService(emailConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email service:", err)
	}

	// Services
	rateLimiter := services.NewRateLimiterService(rateLimitRepo, &services.RateLimiterConfig{
		Window: cfg.RateLimit.Window,
	}, logger)

	registrationService := services.NewRegistrationService(
		userRepo, stagingRepo, rateLimiter, emailService, cfg.Staging.PendingTTL, logger)

	authService := services.NewAuthService(
		userRepo, stagingRepo, tokenRepo, rateLimiter, emailService, &cfg.JWT, cfg.Staging.OTPTTL, logger)

	hcSlice := []ports.HealthChecker{
		health.NewDBHealthChecker(database),
		health.NewRedisHealthChecker(redisClient),
	}

	// HTTP server
	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}
	cookieConfig := &httpserver.CookieConfig{
		Secure:     cfg.Cookie.Secure,
		AccessTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTTL: cfg.JWT.RefreshTokenTTL,
	}

	deps := httpserver.ServerDeps{
		RegistrationService: registrationService,
		AuthService:         authService,
		HealthCheckers:      hcSlice,
	}

	server := httpserver.NewServer(serverConfig, cookieConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
