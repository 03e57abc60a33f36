package stripe

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/vastahq/vasta/internal/domain/billing"
	ierr "github.com/vastahq/vasta/internal/errors"
	"github.com/vastahq/vasta/internal/logger"
	"github.com/vastahq/vasta/internal/types"
)

// provider implements billing.Provider on top of the Stripe API. Every method
// is a single network call with no retry; Stripe's error message is passed
// through for operator diagnosis.
type provider struct {
	client *Client
	logger *logger.Logger
}

// NewProvider creates the Stripe-backed billing provider
func NewProvider(client *Client, logger *logger.Logger) billing.Provider {
	return &provider{
		client: client,
		logger: logger,
	}
}

func (p *provider) GetSubscription(ctx context.Context, id string) (*billing.Subscription, error) {
	stripeSub, err := p.client.API().V1Subscriptions.Retrieve(ctx, id, &stripe.SubscriptionRetrieveParams{})
	if err != nil {
		p.logger.Errorw("failed to retrieve subscription from Stripe",
			"error", err,
			"subscription_id", id,
		)
		return nil, providerErr(err, map[string]any{"subscription_id": id})
	}

	return subscriptionFromStripe(stripeSub)
}

func (p *provider) GetSchedule(ctx context.Context, id string) (*billing.Schedule, error) {
	sched, err := p.client.API().V1SubscriptionSchedules.Retrieve(ctx, id, &stripe.SubscriptionScheduleRetrieveParams{})
	if err != nil {
		p.logger.Errorw("failed to retrieve subscription schedule from Stripe",
			"error", err,
			"schedule_id", id,
		)
		return nil, providerErr(err, map[string]any{"schedule_id": id})
	}

	return scheduleFromStripe(sched), nil
}

func (p *provider) ListSchedules(ctx context.Context, customerID string, limit int) ([]*billing.Schedule, error) {
	params := &stripe.SubscriptionScheduleListParams{
		Customer: stripe.String(customerID),
	}
	params.Limit = stripe.Int64(int64(limit))

	var schedules []*billing.Schedule
	for sched, err := range p.client.API().V1SubscriptionSchedules.List(ctx, params) {
		if err != nil {
			p.logger.Errorw("failed to list subscription schedules from Stripe",
				"error", err,
				"customer_id", customerID,
			)
			return nil, providerErr(err, map[string]any{"customer_id": customerID})
		}
		if sched.Status != stripe.SubscriptionScheduleStatusActive {
			continue
		}
		schedules = append(schedules, scheduleFromStripe(sched))
		if len(schedules) >= limit {
			break
		}
	}

	return schedules, nil
}

func (p *provider) CreateScheduleFromSubscription(ctx context.Context, subscriptionID string) (*billing.Schedule, error) {
	params := &stripe.SubscriptionScheduleCreateParams{
		FromSubscription: stripe.String(subscriptionID),
	}

	sched, err := p.client.API().V1SubscriptionSchedules.Create(ctx, params)
	if err != nil {
		p.logger.Errorw("failed to create subscription schedule in Stripe",
			"error", err,
			"subscription_id", subscriptionID,
		)
		return nil, providerErr(err, map[string]any{"subscription_id": subscriptionID})
	}

	return scheduleFromStripe(sched), nil
}

func (p *provider) UpdateSchedule(ctx context.Context, id string, phases []billing.Phase, endBehavior billing.EndBehavior) (*billing.Schedule, error) {
	params := &stripe.SubscriptionScheduleUpdateParams{
		EndBehavior: stripe.String(string(endBehavior)),
		Phases:      phasesToStripe(phases),
	}

	sched, err := p.client.API().V1SubscriptionSchedules.Update(ctx, id, params)
	if err != nil {
		p.logger.Errorw("failed to update subscription schedule in Stripe",
			"error", err,
			"schedule_id", id,
		)
		return nil, providerErr(err, map[string]any{"schedule_id": id})
	}

	return scheduleFromStripe(sched), nil
}

func (p *provider) UpdateSubscription(ctx context.Context, id string, cancelAtPeriodEnd bool) (*billing.Subscription, error) {
	params := &stripe.SubscriptionUpdateParams{
		CancelAtPeriodEnd: stripe.Bool(cancelAtPeriodEnd),
	}

	stripeSub, err := p.client.API().V1Subscriptions.Update(ctx, id, params)
	if err != nil {
		p.logger.Errorw("failed to update subscription in Stripe",
			"error", err,
			"subscription_id", id,
		)
		return nil, providerErr(err, map[string]any{"subscription_id": id})
	}

	return subscriptionFromStripe(stripeSub)
}

// providerErr wraps a Stripe error, keeping Stripe's own message as the
// display hint.
func providerErr(err error, details map[string]any) error {
	return ierr.WithError(err).
		WithHint(err.Error()).
		WithReportableDetails(details).
		Mark(ierr.ErrProvider)
}

func subscriptionFromStripe(s *stripe.Subscription) (*billing.Subscription, error) {
	if s.Items == nil || len(s.Items.Data) == 0 {
		return nil, ierr.NewError("no items found in Stripe subscription").
			WithHint("Subscription has no active price").
			WithReportableDetails(map[string]any{"subscription_id": s.ID}).
			Mark(ierr.ErrProvider)
	}

	item := s.Items.Data[0]

	cycle := types.BillingCycleMonthly
	if item.Price != nil && item.Price.Recurring != nil &&
		item.Price.Recurring.Interval == stripe.PriceRecurringIntervalYear {
		cycle = types.BillingCycleYearly
	}

	sub := &billing.Subscription{
		ID:                s.ID,
		Cycle:             cycle,
		CurrentPeriodEnd:  time.Unix(item.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		Status:            types.SubscriptionStatus(s.Status),
	}
	if s.Customer != nil {
		sub.CustomerID = s.Customer.ID
	}
	if s.Schedule != nil {
		sub.ScheduleID = s.Schedule.ID
	}
	if item.Price != nil {
		sub.PriceID = item.Price.ID
	}

	return sub, nil
}

func scheduleFromStripe(s *stripe.SubscriptionSchedule) *billing.Schedule {
	sched := &billing.Schedule{
		ID:          s.ID,
		EndBehavior: billing.EndBehavior(s.EndBehavior),
	}
	if s.Customer != nil {
		sched.CustomerID = s.Customer.ID
	}
	if s.Subscription != nil {
		sched.SubscriptionID = s.Subscription.ID
	}

	for _, phase := range s.Phases {
		p := billing.Phase{
			Proration: billing.ProrationNone,
		}
		if phase.StartDate != 0 {
			start := time.Unix(phase.StartDate, 0).UTC()
			p.Start = &start
		}
		if phase.EndDate != 0 {
			end := time.Unix(phase.EndDate, 0).UTC()
			p.End = &end
		}
		if len(phase.Items) > 0 && phase.Items[0].Price != nil {
			p.PriceID = phase.Items[0].Price.ID
		}
		sched.Phases = append(sched.Phases, p)
	}

	return sched
}

func phasesToStripe(phases []billing.Phase) []*stripe.SubscriptionScheduleUpdatePhaseParams {
	out := make([]*stripe.SubscriptionScheduleUpdatePhaseParams, 0, len(phases))
	for _, p := range phases {
		phase := &stripe.SubscriptionScheduleUpdatePhaseParams{
			Items: []*stripe.SubscriptionScheduleUpdatePhaseItemParams{
				{
					Price:    stripe.String(p.PriceID),
					Quantity: stripe.Int64(1),
				},
			},
			ProrationBehavior: stripe.String(string(p.Proration)),
		}
		if p.Start == nil {
			phase.StartDateNow = stripe.Bool(true)
		} else {
			phase.StartDate = stripe.Int64(p.Start.Unix())
		}
		if p.End != nil {
			phase.EndDate = stripe.Int64(p.End.Unix())
		}
		out = append(out, phase)
	}
	return out
}
