package stripe

import (
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/vastahq/vasta/internal/config"
	ierr "github.com/vastahq/vasta/internal/errors"
	"github.com/vastahq/vasta/internal/logger"
)

// Client handles Stripe API client setup and configuration
type Client struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

// NewClient creates a new Stripe client
func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
	}
}

// API returns a configured Stripe API client
func (c *Client) API() *stripe.Client {
	return stripe.NewClient(c.cfg.Stripe.SecretKey, nil)
}

// VerifyEvent checks a webhook payload against the configured signing secret
// and returns the parsed event.
func (c *Client) VerifyEvent(payload []byte, sigHeader string) (*stripe.Event, error) {
	if c.cfg.Stripe.WebhookSecret == "" {
		return nil, ierr.NewError("stripe webhook secret not configured").
			WithHint("Webhook endpoint is not configured").
			Mark(ierr.ErrSystem)
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, c.cfg.Stripe.WebhookSecret)
	if err != nil {
		c.logger.Warnw("webhook signature verification failed", "error", err)
		return nil, ierr.WithError(err).
			WithHint("Invalid webhook signature").
			Mark(ierr.ErrPermissionDenied)
	}

	return &event, nil
}
