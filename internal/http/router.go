package http

import (
	"time"

	"github.com/fundhive/backend/internal/config"
	"github.com/fundhive/backend/internal/http/handlers"
	"github.com/fundhive/backend/internal/middleware"
	"github.com/fundhive/backend/internal/rbac"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	campaignHandler *handlers.CampaignHandler,
	donationHandler *handlers.DonationHandler,
	adminHandler *handlers.AdminHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Payment gateway webhook (public, gateway-authenticated payload)
	api.Post("/payments/callback", donationHandler.PaymentCallback)

	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Public campaign browsing
	api.Get("/campaigns", campaignHandler.List)
	api.Get("/campaigns/:id", campaignHandler.Get)
	api.Get("/campaigns/:id/donations", campaignHandler.ListDonations)
	api.Get("/campaigns/:id/questions", campaignHandler.ListQuestions)
	api.Get("/campaigns/:id/events", campaignHandler.Events)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Get("/me/donations", donationHandler.ListMine)
	protected.Get("/me/campaigns", campaignHandler.ListMine)

	// Campaign lifecycle (creator)
	protected.Post("/campaigns", middleware.RequirePermission(rbac.PermSubmitCampaign), campaignHandler.Submit)
	protected.Put("/campaigns/:id", middleware.RequirePermission(rbac.PermEditCampaign), campaignHandler.Update)
	protected.Post("/campaigns/:id/cancel", campaignHandler.Cancel)

	// Donations
	protected.Post("/campaigns/:id/donations", middleware.RequirePermission(rbac.PermDonate), donationHandler.Donate)
	protected.Get("/donations/:id", donationHandler.Get)

	// Q&A
	protected.Post("/campaigns/:id/questions", middleware.RequirePermission(rbac.PermAskQuestion), campaignHandler.AskQuestion)
	protected.Post("/questions/:question_id/answer", middleware.RequirePermission(rbac.PermAnswerQuestion), campaignHandler.AnswerQuestion)

	// Admin
	admin := protected.Group("/admin")
	admin.Get("/campaigns/pending", middleware.RequirePermission(rbac.PermDecideCampaign), adminHandler.ListPending)
	admin.Post("/campaigns/:id/decide", middleware.RequirePermission(rbac.PermDecideCampaign), adminHandler.Decide)
	admin.Post("/campaigns/:id/feature", middleware.RequirePermission(rbac.PermFeatureCampaign), adminHandler.Feature)
	admin.Delete("/campaigns/:id/feature", middleware.RequirePermission(rbac.PermFeatureCampaign), adminHandler.Unfeature)
	admin.Post("/reconciliation/run", middleware.RequirePermission(rbac.PermRunReconciliation), adminHandler.RunReconciliation)
	admin.Get("/reconciliation/preview", middleware.RequirePermission(rbac.PermRunReconciliation), adminHandler.PreviewReconciliation)

	// WebSocket: live campaign progress
	app.Use("/ws/campaigns/:id", handlers.WSUpgradeMiddleware())
	app.Get("/ws/campaigns/:id", websocket.New(wsHub.HandleWS))
}
