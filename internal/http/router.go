package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/review-campaigns/backend/internal/config"
	"github.com/review-campaigns/backend/internal/http/handlers"
	"github.com/review-campaigns/backend/internal/middleware"
	"go.uber.org/zap"
)

// NewApp returns a fiber app that renders errors in the API envelope.
func NewApp(log *zap.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "review-campaigns-api",
		ErrorHandler: handlers.ErrorHandler(log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    1 << 20,
	})
}

type Handlers struct {
	Profile     *handlers.ProfileHandler
	Campaign    *handlers.CampaignHandler
	Application *handlers.ApplicationHandler
	Meta        *handlers.MetaHandler
	WSHub       *handlers.WSHub // nil disables /ws
}

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	h Handlers,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
		AllowCredentials: cfg.CORSAllowOrigins != "*",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.Metrics())
	app.Use(middleware.LoggerMiddleware(log))
	app.Use(middleware.IdentityMiddleware(cfg, log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute, log))

	authed := middleware.RequireAuth()

	api.Get("/meta/statuses", h.Meta.GetStatuses)

	// Profile
	api.Get("/profile", h.Profile.GetProfile)
	api.Post("/profile", authed, h.Profile.CreateProfile)
	api.Post("/profile/influencer", authed, h.Profile.CreateInfluencerProfile)
	api.Post("/profile/advertiser", authed, h.Profile.CreateAdvertiserProfile)

	// Campaigns
	api.Get("/campaigns", h.Campaign.ListRecruiting)
	api.Post("/campaigns", authed, h.Campaign.CreateCampaign)
	api.Get("/campaigns/my", authed, h.Campaign.MyCampaigns)
	api.Get("/campaigns/:id", h.Campaign.GetCampaign)
	api.Patch("/campaigns/:id/status", authed, h.Campaign.UpdateStatus)
	api.Get("/campaigns/:id/history", authed, h.Campaign.History)

	// Applications
	api.Post("/applications", authed, h.Application.Apply)
	api.Get("/applications/my", authed, h.Application.MyApplications)
	api.Get("/applications/campaign/:campaignId", authed, h.Application.CampaignApplicants)
	api.Patch("/applications/campaign/:campaignId/bulk", authed, h.Application.BulkUpdate)
	api.Post("/applications/campaign/:campaignId/finalize", authed, h.Application.Finalize)
	api.Get("/applications/campaign/:campaignId/export", authed, h.Application.Export)

	// WebSocket
	if h.WSHub != nil {
		app.Use("/ws", handlers.WSUpgradeMiddleware(cfg))
		app.Get("/ws", websocket.New(h.WSHub.HandleWS))
	}
}
