package stripe

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/vastahq/vasta/internal/config"
	ierr "github.com/vastahq/vasta/internal/errors"
	"github.com/vastahq/vasta/internal/logger"
	"github.com/vastahq/vasta/internal/types"
)

type recordingAccountSync struct {
	syncedID      string
	syncedPriceID string
	syncedStatus  types.SubscriptionStatus
	syncedCancel  bool
	paymentID     string
	paymentStatus types.SubscriptionStatus
	deletedID     string
	syncCalls     int
	paymentCalls  int
	deleteCalls   int
}

func (r *recordingAccountSync) SyncSubscription(ctx context.Context, subscriptionID string, priceID string, status types.SubscriptionStatus, cancelAtPeriodEnd bool) error {
	r.syncCalls++
	r.syncedID = subscriptionID
	r.syncedPriceID = priceID
	r.syncedStatus = status
	r.syncedCancel = cancelAtPeriodEnd
	return nil
}

func (r *recordingAccountSync) SyncPaymentStatus(ctx context.Context, subscriptionID string, status types.SubscriptionStatus) error {
	r.paymentCalls++
	r.paymentID = subscriptionID
	r.paymentStatus = status
	return nil
}

func (r *recordingAccountSync) HandleSubscriptionDeleted(ctx context.Context, subscriptionID string) error {
	r.deleteCalls++
	r.deletedID = subscriptionID
	return nil
}

func newWebhookTestHandler(t *testing.T) (*WebhookHandler, *recordingAccountSync) {
	t.Helper()
	log, err := logger.NewLogger(config.GetDefaultConfig())
	require.NoError(t, err)
	sync := &recordingAccountSync{}
	return NewWebhookHandler(sync, log), sync
}

func rawEvent(t *testing.T, eventType string, payload map[string]any) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &stripe.Event{
		ID:   "evt_test_1",
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestWebhookSubscriptionUpdated(t *testing.T) {
	handler, sync := newWebhookTestHandler(t)

	event := rawEvent(t, "customer.subscription.updated", map[string]any{
		"id":                   "sub_1",
		"status":               "past_due",
		"cancel_at_period_end": true,
		"items": map[string]any{
			"data": []map[string]any{
				{"price": map[string]any{"id": "price_pro_m"}},
			},
		},
	})
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	assert.Equal(t, 1, sync.syncCalls)
	assert.Equal(t, "sub_1", sync.syncedID)
	assert.Equal(t, "price_pro_m", sync.syncedPriceID)
	assert.Equal(t, types.SubscriptionStatusPastDue, sync.syncedStatus)
	assert.True(t, sync.syncedCancel)
}

func TestWebhookSubscriptionCreatedSharesUpdatedPath(t *testing.T) {
	handler, sync := newWebhookTestHandler(t)

	event := rawEvent(t, "customer.subscription.created", map[string]any{
		"id":     "sub_1",
		"status": "active",
		"items": map[string]any{
			"data": []map[string]any{
				{"price": map[string]any{"id": "price_business_m"}},
			},
		},
	})
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	assert.Equal(t, 1, sync.syncCalls)
	assert.Equal(t, "price_business_m", sync.syncedPriceID)
	assert.Equal(t, types.SubscriptionStatusActive, sync.syncedStatus)
}

func TestWebhookSubscriptionWithoutItems(t *testing.T) {
	handler, sync := newWebhookTestHandler(t)

	event := rawEvent(t, "customer.subscription.updated", map[string]any{
		"id":     "sub_1",
		"status": "active",
	})
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	assert.Equal(t, 1, sync.syncCalls)
	assert.Empty(t, sync.syncedPriceID)
}

func TestWebhookSubscriptionDeleted(t *testing.T) {
	handler, sync := newWebhookTestHandler(t)

	event := rawEvent(t, "customer.subscription.deleted", map[string]any{
		"id":     "sub_1",
		"status": "canceled",
	})
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	assert.Equal(t, 1, sync.deleteCalls)
	assert.Equal(t, "sub_1", sync.deletedID)
}

func TestWebhookInvoicePaid(t *testing.T) {
	handler, sync := newWebhookTestHandler(t)

	event := rawEvent(t, "invoice.paid", map[string]any{
		"id": "in_1",
		"parent": map[string]any{
			"type": "subscription_details",
			"subscription_details": map[string]any{
				"subscription": "sub_1",
			},
		},
	})
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	assert.Equal(t, 1, sync.paymentCalls)
	assert.Equal(t, "sub_1", sync.paymentID)
	assert.Equal(t, types.SubscriptionStatusActive, sync.paymentStatus)
	assert.Zero(t, sync.syncCalls)
}

func TestWebhookInvoicePaymentFailed(t *testing.T) {
	handler, sync := newWebhookTestHandler(t)

	event := rawEvent(t, "invoice.payment_failed", map[string]any{
		"id": "in_1",
		"parent": map[string]any{
			"type": "subscription_details",
			"subscription_details": map[string]any{
				"subscription": "sub_1",
			},
		},
	})
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	assert.Equal(t, 1, sync.paymentCalls)
	assert.Equal(t, "sub_1", sync.paymentID)
	assert.Equal(t, types.SubscriptionStatusPastDue, sync.paymentStatus)
}

func TestWebhookOneOffInvoiceIgnored(t *testing.T) {
	handler, sync := newWebhookTestHandler(t)

	event := rawEvent(t, "invoice.paid", map[string]any{"id": "in_1"})
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	assert.Zero(t, sync.paymentCalls)
}

func TestWebhookIgnoresUnhandledEventTypes(t *testing.T) {
	handler, sync := newWebhookTestHandler(t)

	event := rawEvent(t, "customer.subscription.trial_will_end", map[string]any{"id": "sub_1"})
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	assert.Zero(t, sync.syncCalls)
	assert.Zero(t, sync.paymentCalls)
	assert.Zero(t, sync.deleteCalls)
}

func TestWebhookMalformedPayload(t *testing.T) {
	handler, sync := newWebhookTestHandler(t)

	event := &stripe.Event{
		ID:   "evt_test_2",
		Type: stripe.EventType("customer.subscription.updated"),
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id": 42}`)},
	}
	err := handler.HandleEvent(context.Background(), event)
	assert.True(t, ierr.IsValidation(err))
	assert.Zero(t, sync.syncCalls)
}

func TestStatusFromStripe(t *testing.T) {
	tests := []struct {
		in   stripe.SubscriptionStatus
		want types.SubscriptionStatus
	}{
		{stripe.SubscriptionStatusActive, types.SubscriptionStatusActive},
		{stripe.SubscriptionStatusTrialing, types.SubscriptionStatusActive},
		{stripe.SubscriptionStatusPastDue, types.SubscriptionStatusPastDue},
		{stripe.SubscriptionStatusUnpaid, types.SubscriptionStatusPastDue},
		{stripe.SubscriptionStatusCanceled, types.SubscriptionStatusCanceled},
		{stripe.SubscriptionStatusIncompleteExpired, types.SubscriptionStatusCanceled},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFromStripe(tt.in))
	}
}
