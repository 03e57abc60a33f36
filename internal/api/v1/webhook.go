package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/vastahq/vasta/internal/errors"
	"github.com/vastahq/vasta/internal/integration/stripe"
	"github.com/vastahq/vasta/internal/logger"
	"github.com/vastahq/vasta/internal/sentry"
)

type WebhookHandler struct {
	client  *stripe.Client
	handler *stripe.WebhookHandler
	sentry  *sentry.Service
	log     *logger.Logger
}

func NewWebhookHandler(client *stripe.Client, handler *stripe.WebhookHandler, sentryService *sentry.Service, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		client:  client,
		handler: handler,
		sentry:  sentryService,
		log:     log,
	}
}

// @Summary Stripe webhook endpoint
// @Description Receives subscription lifecycle events from Stripe
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Failed to read webhook payload").
			Mark(ierr.ErrValidation))
		return
	}

	event, err := h.client.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.handler.HandleEvent(c.Request.Context(), event); err != nil {
		// failed events are retried by Stripe, so surface them loudly
		h.sentry.CaptureException(err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
