package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/vastahq/vasta/internal/api"
	v1 "github.com/vastahq/vasta/internal/api/v1"
	"github.com/vastahq/vasta/internal/config"
	stripeintegration "github.com/vastahq/vasta/internal/integration/stripe"
	"github.com/vastahq/vasta/internal/logger"
	"github.com/vastahq/vasta/internal/plan"
	"github.com/vastahq/vasta/internal/postgres"
	"github.com/vastahq/vasta/internal/repository"
	"github.com/vastahq/vasta/internal/sentry"
	"github.com/vastahq/vasta/internal/service"
	"github.com/vastahq/vasta/internal/validator"
)

// @title Vasta Billing API
// @version 1.0
// @description Billing backend for the Vasta creator storefront
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewDB,

			// Repositories
			repository.NewAccountRepository,

			// Plan catalog
			plan.NewCatalog,

			// Stripe integration
			stripeintegration.NewClient,
			stripeintegration.NewProvider,
			stripeintegration.NewWebhookHandler,
			provideAccountSync,

			// Error reporting
			sentry.NewSentryService,

			// Services
			service.NewBillingService,
			service.NewPlanService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(sentry.RegisterHooks),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideAccountSync(billingService service.BillingService) stripeintegration.AccountSyncService {
	return billingService
}

func provideHandlers(
	log *logger.Logger,
	planService service.PlanService,
	billingService service.BillingService,
	stripeClient *stripeintegration.Client,
	webhookHandler *stripeintegration.WebhookHandler,
	sentryService *sentry.Service,
) api.Handlers {
	return api.Handlers{
		Health:  v1.NewHealthHandler(log),
		Plan:    v1.NewPlanHandler(planService, log),
		Billing: v1.NewBillingHandler(billingService, log),
		Webhook: v1.NewWebhookHandler(stripeClient, webhookHandler, sentryService, log),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, log)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			db.Close()
			return nil
		},
	})
}
