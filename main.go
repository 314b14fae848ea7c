package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/NomadCrew/nomad-weather/config"
	"github.com/NomadCrew/nomad-weather/handlers"
	"github.com/NomadCrew/nomad-weather/internal/location"
	"github.com/NomadCrew/nomad-weather/internal/screen"
	"github.com/NomadCrew/nomad-weather/internal/weather"
	"github.com/NomadCrew/nomad-weather/internal/websocket"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/NomadCrew/nomad-weather/router"
	"github.com/NomadCrew/nomad-weather/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	weatherClient, err := weather.NewFromConfig(cfg.Weather, registry)
	if err != nil {
		log.Fatalf("Failed to create weather client: %v", err)
	}
	locator, err := location.NewFromConfig(cfg.Location, time.Duration(cfg.Weather.TimeoutSeconds)*time.Second)
	if err != nil {
		log.Fatalf("Failed to create locator: %v", err)
	}

	controller := screen.NewController(weatherClient, locator)
	defer controller.Close()

	var redisClient redis.Cmdable
	if cfg.Redis.Enabled {
		client := newRedisClient(cfg.Redis)
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warnw("Redis not reachable at startup, rate limiting fails open", "address", cfg.Redis.Address, "error", err)
		}
		cancel()
		redisClient = client
	}

	hub := websocket.NewHub(controller)
	healthService := services.NewHealthService(redisClient, controller, weatherClient.Name(), cfg.Server.Version)

	r := router.SetupRouter(router.Dependencies{
		Config:        cfg,
		ScreenHandler: handlers.NewScreenHandler(controller),
		HealthHandler: handlers.NewHealthHandler(healthService),
		WSHandler:     websocket.NewHandler(hub, &cfg.Server, controller),
		Redis:         redisClient,
		Gatherer:      registry,
		Logger:        log,
	})

	// Mount in the background: the first fetch is visible as a loading view.
	go func() {
		mountCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		snap, err := controller.Mount(mountCtx)
		if err != nil {
			log.Warnw("Initial mount did not complete", "error", err)
			return
		}
		log.Infow("Screen mounted", "phase", snap.Phase, "generation", snap.Generation)
	}()

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "provider", weatherClient.Name(), "environment", cfg.Server.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("Server stopped unexpectedly", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = hub.Shutdown(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
		return
	}
	log.Info("Server exited")
}

func newRedisClient(cfg config.RedisConfig) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}
