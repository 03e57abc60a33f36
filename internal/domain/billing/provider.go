package billing

import (
	"context"
)

// Provider is the billing provider boundary. Every call is a fallible network
// round trip with no internal retry; callers must not assume atomicity across
// consecutive calls and re-derive provider state before acting on it.
type Provider interface {
	// GetSubscription retrieves a live subscription by id.
	GetSubscription(ctx context.Context, id string) (*Subscription, error)

	// GetSchedule retrieves a schedule by id, phases included.
	GetSchedule(ctx context.Context, id string) (*Schedule, error)

	// ListSchedules lists the customer's active schedules, newest first,
	// up to limit.
	ListSchedules(ctx context.Context, customerID string, limit int) ([]*Schedule, error)

	// CreateScheduleFromSubscription creates a schedule seeded with a single
	// phase mirroring the subscription's current state.
	CreateScheduleFromSubscription(ctx context.Context, subscriptionID string) (*Schedule, error)

	// UpdateSchedule overwrites the schedule's phase timeline and end behavior.
	UpdateSchedule(ctx context.Context, id string, phases []Phase, endBehavior EndBehavior) (*Schedule, error)

	// UpdateSubscription sets the subscription's cancel-at-period-end flag.
	UpdateSubscription(ctx context.Context, id string, cancelAtPeriodEnd bool) (*Subscription, error)
}
