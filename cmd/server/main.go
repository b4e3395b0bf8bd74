package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mealtrack/meal-tracker/internal/api"
	"github.com/mealtrack/meal-tracker/internal/api/middleware"
	"github.com/mealtrack/meal-tracker/internal/cache"
	"github.com/mealtrack/meal-tracker/internal/config"
	"github.com/mealtrack/meal-tracker/internal/logger"
	"github.com/mealtrack/meal-tracker/internal/metrics"
	"github.com/mealtrack/meal-tracker/internal/repository/postgres"
	"github.com/mealtrack/meal-tracker/internal/service"
	"github.com/mealtrack/meal-tracker/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.WithField("environment", cfg.Environment).Info("starting meal tracker")

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// Token cache is optional; without it every request verifies against the database
	var tokens cache.TokenCache = cache.Noop{}
	var redisCache *cache.RedisCache
	if cfg.CacheEnabled() {
		redisCache, err = cache.Connect(context.Background(), cache.Options{
			URL:        cfg.RedisURL,
			Prefix:     cfg.CachePrefix,
			OpTimeout:  cfg.CacheOpTimeout,
			MaxRetries: cfg.CacheMaxRetries,
		}, log, collector)
		switch {
		case redisCache == nil:
			log.WithError(err).Fatal("invalid redis configuration")
		case err != nil:
			log.WithError(err).Warn("starting with an unreachable token cache")
		}
		tokens = redisCache
	} else {
		log.Info("REDIS_URL not set, token cache disabled")
	}

	repos := postgres.NewRepositories(db)

	hub := websocket.NewHub(log)
	go hub.Run()

	services := service.NewServices(repos, tokens, hub, collector, log, cfg)

	authLimiter := middleware.NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst)

	router := api.NewRouter(api.Dependencies{
		Services:    services,
		Hub:         hub,
		Logger:      log,
		Metrics:     collector,
		Gatherer:    registry,
		AuthLimiter: authLimiter,
		HealthCheck: func(ctx context.Context) error {
			return postgres.Ping(ctx, db)
		},
	})

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	hub.Stop()
	authLimiter.Stop()
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			log.WithError(err).Warn("failed to close redis client")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("server stopped")
}
