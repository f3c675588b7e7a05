package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/api"
	"github.com/fortifiedfantasy/fein-server/internal/config"
	"github.com/fortifiedfantasy/fein-server/internal/espn"
	"github.com/fortifiedfantasy/fein-server/internal/notify"
	"github.com/fortifiedfantasy/fein-server/internal/rate"
	"github.com/fortifiedfantasy/fein-server/internal/repository/postgres"
	"github.com/fortifiedfantasy/fein-server/internal/service"
	rdb "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Rate limiting: shared window when redis is configured, per-process
	// otherwise.
	var limiter rate.Limiter
	if cfg.RedisURL != "" {
		opts, err := rdb.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to parse REDIS_URL: %v", err)
		}
		limiter = rate.NewRedisLimiter(rdb.NewClient(opts), "ff:code:", cfg.CodeRateMax, cfg.CodeRateWindow)
	} else {
		limiter = rate.NewMemoryLimiter(cfg.CodeRateMax, cfg.CodeRateWindow)
	}

	// Code delivery: SMTP for email when configured; everything else logs.
	var sender notify.Sender = notify.LogSender{}
	if cfg.SMTPHost != "" {
		sender = notify.Multi{
			Email:    notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass),
			Fallback: notify.LogSender{},
		}
	}

	// Initialize services
	services := service.NewServices(repos, limiter, sender, cfg)

	espnClient := espn.NewClient(cfg.ESPNBaseURL, cfg.ESPNTimeout)

	// Initialize router
	router := api.NewRouter(services, espnClient, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
