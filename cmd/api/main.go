package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/review-campaigns/backend/internal/config"
	"github.com/review-campaigns/backend/internal/db"
	"github.com/review-campaigns/backend/internal/events"
	apphttp "github.com/review-campaigns/backend/internal/http"
	"github.com/review-campaigns/backend/internal/http/handlers"
	"github.com/review-campaigns/backend/internal/logger"
	"github.com/review-campaigns/backend/internal/repositories"
	"github.com/review-campaigns/backend/internal/services"
	"github.com/review-campaigns/backend/migrations"
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

	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, cfg.PostgresMaxConn, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	var migrationsFS fs.FS = migrations.FS
	if cfg.MigrationsDir != "" {
		migrationsFS = os.DirFS(cfg.MigrationsDir)
	}
	if err := db.RunMigrations(ctx, pool, migrationsFS, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis is optional
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Repositories
	profileRepo := repositories.NewProfileRepo(pool)
	campaignRepo := repositories.NewCampaignRepo(pool)
	applicationRepo := repositories.NewApplicationRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)
	txManager := db.NewTxManager(pool)

	// Events
	var publisher events.Publisher = events.NopPublisher{}
	var wsHub *handlers.WSHub
	if rdb != nil {
		publisher = events.NewRedisPublisher(rdb, log)
		wsHub = handlers.NewWSHub(events.NewRedisSubscriber(rdb, log), log)
		if err := wsHub.Start(ctx); err != nil {
			log.Fatal("failed to start websocket hub", zap.Error(err))
		}
	}

	// Services
	calendar := services.NewCalendar(cfg.Location)
	authz := services.NewAuthorizer(profileRepo, campaignRepo)
	profileService := services.NewProfileService(profileRepo, txManager, auditRepo, log)
	campaignService := services.NewCampaignService(campaignRepo, authz, auditRepo, publisher, calendar, log)
	applicationService := services.NewApplicationService(applicationRepo, campaignRepo, authz, txManager, auditRepo, publisher, calendar, log)

	app := apphttp.NewApp(log)
	apphttp.SetupRouter(app, cfg, log, rdb, apphttp.Handlers{
		Profile:     handlers.NewProfileHandler(profileService, log),
		Campaign:    handlers.NewCampaignHandler(campaignService, log),
		Application: handlers.NewApplicationHandler(applicationService, log),
		Meta:        handlers.NewMetaHandler(),
		WSHub:       wsHub,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
