package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"safewatch/internal/config"
	"safewatch/internal/handlers"
	"safewatch/internal/middleware"
	"safewatch/internal/ratelimit"
	"safewatch/internal/repositories/mongodb"
	"safewatch/internal/services"
	"safewatch/internal/utils"
	"safewatch/pkg/cache"
	"safewatch/pkg/database"
	"safewatch/pkg/logger"
	"safewatch/pkg/mail"
	"safewatch/pkg/maps"
	"safewatch/pkg/metrics"
	"safewatch/pkg/sms"
	"safewatch/routes"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  cfg.App.LogOutput,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.WithError(err).Fatal("Server stopped with error")
	}
}

func run(cfg *config.Config, appLogger *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	mongoDB, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer mongoDB.Close()

	if err := database.NewMigrator(mongoDB.Database, appLogger).Up(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	healthChecks := map[string]handlers.Pinger{"mongodb": mongoDB}

	// Cache, plus the shared Redis client for distributed rate limiting
	var (
		userCache cache.Cache
		redisc    *cache.RedisCache
	)
	if cfg.Redis.Enabled {
		redisc, err = cache.NewRedisCache(&cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisc.Close()
		userCache = redisc
		healthChecks["redis"] = redisc
	} else {
		userCache = cache.NewMemoryCache(cfg.Redis.CacheTTL, 2*cfg.Redis.CacheTTL)
	}

	m := metrics.NewDefault()

	// SOS limiter
	var sosLimiter ratelimit.Limiter
	switch cfg.SOS.RateStore {
	case config.RateStoreRedis:
		if redisc == nil {
			return errors.New("SOS_RATE_STORE=redis requires REDIS_ENABLED=true")
		}
		sosLimiter = ratelimit.NewRedisStore(redisc.Client(), utils.CacheRateLimitPrefix, cfg.SOS.RateWindow, cfg.SOS.RateMax)
	default:
		memStore := ratelimit.NewMemoryStore(cfg.SOS.RateWindow, cfg.SOS.RateMax)
		if err := memStore.StartSweeper(cfg.SOS.SweepSchedule, m.ObserveSweep); err != nil {
			return fmt.Errorf("start rate limit sweeper: %w", err)
		}
		defer memStore.Stop()
		sosLimiter = memStore
	}

	// Outbound channels
	var mailer services.EmailSender
	smtpMailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromEmail: cfg.SMTP.FromEmail,
		FromName:  cfg.SMTP.FromName,
		SSL:       cfg.SMTP.SSL,
		TLS:       cfg.SMTP.TLS,
		Timeout:   cfg.SOS.SendTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Error("SMTP not configured, every email alert will be reported as failed")
		mailer = mail.DisabledMailer{}
	} else {
		mailer = smtpMailer
	}

	smsSender, err := newSMSSender(ctx, cfg.SMS)
	if err != nil {
		return fmt.Errorf("configure sms: %w", err)
	}

	var geocoder maps.Geocoder
	if cfg.Maps.ReverseGeocode && cfg.Maps.GoogleMaps.APIKey != "" {
		g, err := maps.NewGoogleMapsProvider(cfg.Maps.GoogleMaps.APIKey)
		if err != nil {
			appLogger.WithError(err).Warn("Reverse geocoding disabled")
		} else {
			geocoder = g
		}
	}

	// Repositories
	userRepo := mongodb.NewUserRepository(mongoDB.Database, userCache, cfg.Redis.CacheTTL)
	auditRepo := mongodb.NewAuditLogRepository(mongoDB.Database)

	// Services
	locationService := services.NewLocationService(userRepo, appLogger)
	contactService := services.NewContactService(userRepo, appLogger)
	notificationService := services.NewNotificationService(mailer, smsSender, services.NotificationOptionsFromConfig(cfg), m, appLogger)
	sosService := services.NewSOSService(sosLimiter, userRepo, locationService, notificationService, geocoder, cfg.SOS, m, appLogger)
	adminService := services.NewAdminService(userRepo, auditRepo, appLogger)

	// Handlers
	locationHandler := handlers.NewLocationHandler(locationService, appLogger)
	sosHandler := handlers.NewSOSHandler(sosService, appLogger)
	contactHandler := handlers.NewContactHandler(contactService, appLogger)
	adminHandler := handlers.NewAdminHandler(adminService, appLogger)
	healthHandler := handlers.NewHealthHandler(healthChecks, cfg.App.Version)

	if !cfg.App.Debug || cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}

	var apiRateStore limiter.Store
	if redisc != nil {
		apiRateStore, err = limiterredis.NewStoreWithOptions(redisc.Client(), limiter.StoreOptions{
			Prefix: utils.CacheRateLimitPrefix + "api",
		})
		if err != nil {
			return fmt.Errorf("api rate limit store: %w", err)
		}
	}

	// Global middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RecoveryMiddleware(appLogger))
	router.Use(middleware.LoggingMiddleware(appLogger, m))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.APIRateLimit(middleware.APIRateLimitConfig{
		PerMinute: cfg.Security.RateLimitPerMinute,
		SkipPaths: []string{"/health", "/metrics"},
		Store:     apiRateStore,
	}, appLogger))

	auth := middleware.AuthRequired(cfg.Security.JWTSecret, appLogger)
	api := router.Group("/api")
	{
		routes.SetupLocationRoutes(api, auth, locationHandler, sosHandler, contactHandler)
		routes.SetupAdminRoutes(api, auth, adminHandler)
	}
	routes.SetupSystemRoutes(router, healthHandler, m.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// SOS requests wait for the whole fan-out.
		WriteTimeout: cfg.SOS.DispatchTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.WithFields(map[string]interface{}{
			"port":        cfg.App.Port,
			"environment": cfg.App.Environment,
			"sms_enabled": smsSender != nil,
			"rate_store":  cfg.SOS.RateStore,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.SOS.DispatchTimeout+5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newSMSSender returns nil when SMS alerts are disabled.
func newSMSSender(ctx context.Context, cfg *config.SMSConfig) (services.SMSSender, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	var provider sms.SMSProvider
	switch cfg.Provider {
	case "sns":
		p, err := sms.NewAWSSNSProvider(ctx, cfg.AWS.Region, cfg.AWS.SenderID)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		provider = sms.NewTwilioProvider(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
	}
	return sms.NewSender(provider), nil
}
