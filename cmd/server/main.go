package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ikkim/cart-backend/config"
	"github.com/ikkim/cart-backend/internal/app/controller"
	"github.com/ikkim/cart-backend/internal/app/repository"
	"github.com/ikkim/cart-backend/internal/app/service"
	"github.com/ikkim/cart-backend/internal/db"
	"github.com/ikkim/cart-backend/internal/router"
	ws "github.com/ikkim/cart-backend/internal/websocket"
	"github.com/ikkim/cart-backend/pkg/logger"
	"github.com/ikkim/cart-backend/pkg/metrics"
	"github.com/ikkim/cart-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logger.Initialize(logger.Config{
		Level:       cfg.LogLevel(),
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format == "console",
	})

	logger.Info("Starting cart server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   cfg.LogLevel(),
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	opts := []service.Option{
		service.WithBroadcaster(hub),
		service.WithMetrics(metrics.NewCartMetrics(prometheus.DefaultRegisterer)),
	}

	// Redis is optional; without it summaries are always computed
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, summary cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer func() {
				if err := redis.Close(); err != nil {
					logger.Error("Failed to close Redis connection", err)
				}
			}()
			opts = append(opts, service.WithSummaryCache(redis.NewSummaryCache(redis.GetClient(), cfg.Redis.SummaryTTL)))
		}
	}

	cartRepo := repository.NewCartRepository(db.GetDB())
	cartService := service.NewCartService(cartRepo, opts...)

	if err := controller.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register request validators", err)
	}

	cartController := controller.NewCartController(cartService)
	cartStreamController := controller.NewCartStreamController(cartService, hub, cfg.CORS.AllowedOrigins)

	r := router.NewRouter(cartController, cartStreamController, cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r.Setup(),
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shut down", err)
		return
	}

	logger.Info("Server stopped successfully")
}
