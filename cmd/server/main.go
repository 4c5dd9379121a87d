package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clientdesk/internal/config"
	"clientdesk/internal/handler"
	"clientdesk/internal/httpserver"
	"clientdesk/internal/repository"
	"clientdesk/internal/service"
	"clientdesk/internal/sync"
	"clientdesk/pkg/db"
	"clientdesk/pkg/logger"
	"clientdesk/pkg/mq"
	"clientdesk/pkg/redisclient"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logg.Sync()

	logg.Info("Starting clientdesk server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("redis_addr", cfg.Redis.Addr),
		zap.String("mq_url", cfg.MQ.URL),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// DB
	pool, err := db.NewPool(ctx, cfg.DB, logg)
	if err != nil {
		logg.Fatal("Failed to init DB", zap.Error(err))
	}
	defer pool.Close()

	// Redis (push update channel)
	rdb := redisclient.New(cfg.Redis)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logg.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()
	logg.Info("Redis connection established successfully")

	// RabbitMQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		logg.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	projectRepo := repository.NewProjectRepository(pool, logg)
	offerRepo := repository.NewOfferRepository(pool, logg)

	// Services
	broadcaster := sync.NewBroadcaster(rdb, logg)
	projectService := service.NewProjectService(projectRepo, broadcaster, publisher, logg)
	offerService := service.NewOfferService(offerRepo, publisher, logg)

	// Handlers
	projectHandler := handler.NewProjectHandler(projectService, logg)
	offerHandler := handler.NewOfferHandler(offerService, logg)

	// Router
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpserver.NewRouter(projectHandler, offerHandler, logg, pool, rdb)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logg.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	logg.Info("clientdesk server is fully initialized and running",
		zap.String("http_addr", cfg.Server.Port),
		zap.String("sync_channel", sync.ProjectUpdatesChannel),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Shutting down clientdesk server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		logg.Info("HTTP server stopped")
	}

	logg.Info("clientdesk server shutdown complete")
}
