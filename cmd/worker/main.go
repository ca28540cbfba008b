package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/review-campaigns/backend/internal/config"
	"github.com/review-campaigns/backend/internal/db"
	"github.com/review-campaigns/backend/internal/events"
	"github.com/review-campaigns/backend/internal/logger"
	"github.com/review-campaigns/backend/internal/repositories"
	"github.com/review-campaigns/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = log.With(zap.String("component", "worker"))

	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, cfg.PostgresMaxConn, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	var publisher events.Publisher = events.NopPublisher{}
	if rdb != nil {
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb, log)
	}

	// Repos
	profileRepo := repositories.NewProfileRepo(pool)
	campaignRepo := repositories.NewCampaignRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Services
	authz := services.NewAuthorizer(profileRepo, campaignRepo)
	campaignService := services.NewCampaignService(campaignRepo, authz, auditRepo, publisher, services.NewCalendar(cfg.Location), log)

	log.Info("worker started", zap.Duration("close_interval", cfg.CampaignCloseInterval))

	closeTicker := time.NewTicker(cfg.CampaignCloseInterval)
	defer closeTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Catch up on anything that expired while the worker was down.
	runCloseExpired(ctx, campaignService, log)

	for {
		select {
		case <-closeTicker.C:
			runCloseExpired(ctx, campaignService, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

func runCloseExpired(ctx context.Context, campaignService *services.CampaignService, log *zap.Logger) {
	n, err := campaignService.CloseExpired(ctx)
	if err != nil {
		log.Error("failed to close expired campaigns", zap.Int("closed", n), zap.Error(err))
		return
	}
	log.Debug("expired campaign sweep done", zap.Int("closed", n))
}
