// Command desk runs a headless dashboard session against a clientdesk
// server: it loads the project and offer collections over HTTP, then
// follows the Redis push channel and logs each applied update.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"clientdesk/internal/apiclient"
	"clientdesk/internal/config"
	"clientdesk/internal/model"
	"clientdesk/internal/store"
	"clientdesk/internal/sync"
	"clientdesk/pkg/logger"
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

	baseURL := os.Getenv("SERVER_URL")
	if baseURL == "" {
		baseURL = "http://localhost" + cfg.Server.Port
	}

	api := apiclient.New(baseURL)
	projects := store.NewProjectStore(api, logg)
	offers := store.NewOfferStore(api, logg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loadCtx, loadCancel := context.WithTimeout(ctx, 15*time.Second)
	defer loadCancel()
	if err := projects.Fetch(loadCtx); err != nil {
		logg.Fatal("Initial project fetch failed", zap.Error(err))
	}
	if err := offers.FetchOffers(loadCtx); err != nil {
		logg.Warn("Offer fetch failed, continuing with empty cache", zap.Error(err))
	}
	if err := offers.FetchAssigned(loadCtx); err != nil {
		logg.Warn("Assignment fetch failed, continuing with empty cache", zap.Error(err))
	}

	logg.Info("Session loaded",
		zap.Int("projects", len(projects.Projects())),
		zap.Int("offers", len(offers.Offers())),
		zap.Int("assigned_offers", len(offers.Assigned())),
	)

	rdb := redisclient.New(cfg.Redis)
	defer rdb.Close()

	sub := sync.NewSubscriber(ctx, rdb, func(p *model.Project) {
		projects.ApplySyncPayload(p)
		logg.Info("Project update applied",
			zap.String("id", p.ID),
			zap.String("project_name", p.ProjectName),
			zap.Int("progress", p.Progress()),
			zap.Time("updated_at", p.UpdatedAt),
		)
	}, logg)
	defer sub.Close()

	go sub.Start(ctx)
	logg.Info("Following push channel", zap.String("channel", sync.ProjectUpdatesChannel))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Session closed")
}
