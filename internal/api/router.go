package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/vastahq/vasta/internal/api/v1"
	"github.com/vastahq/vasta/internal/config"
	"github.com/vastahq/vasta/internal/logger"
	"github.com/vastahq/vasta/internal/rest/middleware"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Plan    *v1.PlanHandler
	Billing *v1.BillingHandler
	Webhook *v1.WebhookHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")

	public := v1Group.Group("")
	{
		public.GET("/plans", handlers.Plan.GetPlans)
		// Webhook requests authenticate by signature, not by session token
		public.POST("/webhooks/stripe", handlers.Webhook.HandleStripeWebhook)
	}

	private := v1Group.Group("", middleware.AuthenticateMiddleware(cfg, logger))
	{
		private.GET("/billing", handlers.Billing.GetBillingStatus)
		private.POST("/billing/downgrade", handlers.Billing.Downgrade)
	}

	return router
}
