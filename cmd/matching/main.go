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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ridealong/event-carpool/internal/geo"
	"github.com/ridealong/event-carpool/internal/matching"
	"github.com/ridealong/event-carpool/internal/profiles"
	"github.com/ridealong/event-carpool/internal/results"
	"github.com/ridealong/event-carpool/pkg/common"
	"github.com/ridealong/event-carpool/pkg/config"
	"github.com/ridealong/event-carpool/pkg/database"
	"github.com/ridealong/event-carpool/pkg/errors"
	"github.com/ridealong/event-carpool/pkg/eventbus"
	"github.com/ridealong/event-carpool/pkg/logger"
	"github.com/ridealong/event-carpool/pkg/middleware"
	redisclient "github.com/ridealong/event-carpool/pkg/redis"
	"github.com/ridealong/event-carpool/pkg/resilience"
)

const (
	serviceName = "matching-service"
	version     = "2.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting matching service",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	// Initialize Sentry for error tracking
	sentryConfig := errors.DefaultSentryConfig()
	sentryConfig.DSN = cfg.Sentry.DSN
	sentryConfig.Environment = cfg.Sentry.Environment
	sentryConfig.ServerName = serviceName
	sentryConfig.Release = version
	if err := errors.InitSentry(sentryConfig); err != nil {
		logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
	} else {
		defer errors.Flush(2 * time.Second)
		logger.Info("Sentry error tracking initialized successfully")
	}

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Connected to database")

	redisClient, err := redisclient.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}()
	logger.Info("Connected to redis")

	var bus *eventbus.Bus
	if cfg.NATS.Enabled {
		bus, err = eventbus.New(eventbus.Config{
			URL:        cfg.NATS.URL,
			Name:       serviceName,
			StreamName: cfg.NATS.StreamName,
		})
		if err != nil {
			logger.Warn("Failed to connect to NATS, continuing without event publishing", zap.Error(err))
			bus = nil
		} else {
			defer bus.Close()
			logger.Info("Connected to NATS", zap.String("stream", cfg.NATS.StreamName))
		}
	}

	baseConf := matchingConfigFromEnv(&cfg.Matching)
	if err := baseConf.Validate(); err != nil {
		logger.Fatal("Invalid matching configuration", zap.Error(err))
	}

	var matchPublisher matching.EventPublisher
	var profilePublisher profiles.EventPublisher
	if bus != nil {
		matchPublisher = bus
		profilePublisher = bus
	}

	profileRepo := profiles.NewRepository(db)
	profileService := profiles.NewService(profileRepo, profilePublisher, baseConf)

	resultStore := results.NewStore(redisClient.Client, cfg.Matching.ResultTTL())
	matchService := matching.NewService(resultStore, profileService, matchPublisher, baseConf)

	geocoder := geo.NewGeocodingService(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout(), redisClient)
	geocoder.SetCacheTTL(cfg.Geocoder.CacheTTL())
	if cfg.Resilience.CircuitBreaker.Enabled {
		cb := cfg.Resilience.CircuitBreaker
		geocoder.SetCircuitBreaker(resilience.NewCircuitBreaker(resilience.Settings{
			Name:             "geocoder",
			Interval:         time.Duration(cb.IntervalSeconds) * time.Second,
			Timeout:          time.Duration(cb.TimeoutSeconds) * time.Second,
			FailureThreshold: uint32(cb.FailureThreshold),
			SuccessThreshold: uint32(cb.SuccessThreshold),
		}, nil))
		logger.Info("Circuit breaker configured for geocoder",
			zap.Int("failure_threshold", cb.FailureThreshold),
			zap.Int("timeout_seconds", cb.TimeoutSeconds),
		)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithSentry())
	router.Use(middleware.SentryMiddleware())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestTimeout(time.Duration(cfg.Server.WriteTimeout) * time.Second))
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS())
	router.Use(middleware.SanitizeRequest())
	router.Use(middleware.Metrics(serviceName))
	router.Use(middleware.ErrorHandler())

	// Health check endpoints
	router.GET("/healthz", common.HealthCheck(serviceName, version))
	router.GET("/health/live", common.LivenessProbe(serviceName, version))

	healthChecks := map[string]func() error{
		"database": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(ctx)
		},
		"redis": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Client.Ping(ctx).Err()
		},
	}
	if bus != nil {
		healthChecks["nats"] = func() error {
			if !bus.Connected() {
				return fmt.Errorf("nats connection lost")
			}
			return nil
		}
	}
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": serviceName,
			"version": version,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	matching.NewHandler(matchService).RegisterRoutes(api)
	profiles.NewHandler(profileService).RegisterRoutes(api)
	geo.NewHandler(geocoder).RegisterRoutes(api)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// matchingConfigFromEnv maps the environment-level matching knobs onto the
// engine's configuration type.
func matchingConfigFromEnv(c *config.MatchingConfig) matching.MatchingConfig {
	return matching.MatchingConfig{
		MaxDetourMiles:          c.MaxDetourMiles,
		EnforceGenderPreference: c.EnforceGenderPreference,
		GroupByAgeRange:         c.GroupByAgeRange,
		Timing: matching.TimingConfig{
			TrafficBufferMultiplier: c.TrafficBufferMultiplier,
			LoadTimeMinutes:         c.LoadTimeMinutes,
		},
		Weights: matching.Weights{
			RouteEfficiency:  c.WeightRouteEfficiency,
			Detour:           c.WeightDetour,
			GenderMatch:      c.WeightGenderMatch,
			AgeMatch:         c.WeightAgeMatch,
			DriverPreference: c.WeightDriverPreference,
			EarlyDeparture:   c.WeightEarlyDeparture,
		},
		PriorityOrder: matching.DefaultPriorityOrder(),
	}
}
