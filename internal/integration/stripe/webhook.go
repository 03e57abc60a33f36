package stripe

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v82"

	ierr "github.com/vastahq/vasta/internal/errors"
	"github.com/vastahq/vasta/internal/logger"
	"github.com/vastahq/vasta/internal/types"
)

const (
	eventSubscriptionCreated  = "customer.subscription.created"
	eventSubscriptionUpdated  = "customer.subscription.updated"
	eventSubscriptionDeleted  = "customer.subscription.deleted"
	eventInvoicePaid          = "invoice.paid"
	eventInvoicePaymentFailed = "invoice.payment_failed"
)

// AccountSyncService is the slice of the billing service the webhook needs to
// keep local account state aligned with provider-side subscription changes.
type AccountSyncService interface {
	SyncSubscription(ctx context.Context, subscriptionID string, priceID string, status types.SubscriptionStatus, cancelAtPeriodEnd bool) error
	SyncPaymentStatus(ctx context.Context, subscriptionID string, status types.SubscriptionStatus) error
	HandleSubscriptionDeleted(ctx context.Context, subscriptionID string) error
}

// WebhookHandler dispatches verified Stripe webhook events
type WebhookHandler struct {
	accountSync AccountSyncService
	logger      *logger.Logger
}

// NewWebhookHandler creates a new Stripe webhook handler
func NewWebhookHandler(accountSync AccountSyncService, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		accountSync: accountSync,
		logger:      logger,
	}
}

// HandleEvent processes a verified Stripe webhook event. Unhandled event types
// are acknowledged without action so Stripe does not retry them.
func (h *WebhookHandler) HandleEvent(ctx context.Context, event *stripe.Event) error {
	h.logger.Infow("processing Stripe webhook event",
		"event_id", event.ID,
		"event_type", event.Type,
	)

	switch string(event.Type) {
	case eventSubscriptionCreated, eventSubscriptionUpdated:
		return h.handleSubscriptionChanged(ctx, event)
	case eventSubscriptionDeleted:
		return h.handleSubscriptionDeleted(ctx, event)
	case eventInvoicePaid:
		return h.handleInvoiceOutcome(ctx, event, types.SubscriptionStatusActive)
	case eventInvoicePaymentFailed:
		return h.handleInvoiceOutcome(ctx, event, types.SubscriptionStatusPastDue)
	default:
		h.logger.Debugw("ignoring unhandled webhook event type", "event_type", event.Type)
		return nil
	}
}

func (h *WebhookHandler) handleSubscriptionChanged(ctx context.Context, event *stripe.Event) error {
	sub, err := parseSubscriptionEvent(event)
	if err != nil {
		return err
	}

	return h.accountSync.SyncSubscription(ctx, sub.ID, subscriptionPriceID(sub), statusFromStripe(sub.Status), sub.CancelAtPeriodEnd)
}

func (h *WebhookHandler) handleSubscriptionDeleted(ctx context.Context, event *stripe.Event) error {
	sub, err := parseSubscriptionEvent(event)
	if err != nil {
		return err
	}

	return h.accountSync.HandleSubscriptionDeleted(ctx, sub.ID)
}

func (h *WebhookHandler) handleInvoiceOutcome(ctx context.Context, event *stripe.Event, status types.SubscriptionStatus) error {
	inv, err := parseInvoiceEvent(event)
	if err != nil {
		return err
	}

	subscriptionID := invoiceSubscriptionID(inv)
	if subscriptionID == "" {
		// one-off invoice, nothing to sync
		h.logger.Debugw("invoice event without a subscription, ignoring", "event_id", event.ID)
		return nil
	}

	return h.accountSync.SyncPaymentStatus(ctx, subscriptionID, status)
}

func parseSubscriptionEvent(event *stripe.Event) (*stripe.Subscription, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Malformed subscription payload in webhook event").
			WithReportableDetails(map[string]any{"event_id": event.ID}).
			Mark(ierr.ErrValidation)
	}
	return &sub, nil
}

func parseInvoiceEvent(event *stripe.Event) (*stripe.Invoice, error) {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Malformed invoice payload in webhook event").
			WithReportableDetails(map[string]any{"event_id": event.ID}).
			Mark(ierr.ErrValidation)
	}
	return &inv, nil
}

// subscriptionPriceID reads the running price off the event payload. Empty
// when the payload carries no items, which the sync treats as "keep the
// recorded plan".
func subscriptionPriceID(sub *stripe.Subscription) string {
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return ""
	}
	return sub.Items.Data[0].Price.ID
}

// invoiceSubscriptionID resolves the subscription an invoice bills for. Empty
// for one-off invoices.
func invoiceSubscriptionID(inv *stripe.Invoice) string {
	if inv.Parent == nil || inv.Parent.SubscriptionDetails == nil || inv.Parent.SubscriptionDetails.Subscription == nil {
		return ""
	}
	return inv.Parent.SubscriptionDetails.Subscription.ID
}

func statusFromStripe(status stripe.SubscriptionStatus) types.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return types.SubscriptionStatusActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return types.SubscriptionStatusPastDue
	default:
		return types.SubscriptionStatusCanceled
	}
}
