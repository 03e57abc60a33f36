package billing

import (
	"time"

	"github.com/vastahq/vasta/internal/types"
)

// Subscription is the provider-side subscription as this subsystem reads it.
// A subscription carries exactly one active price line; its price id and
// recurring interval are flattened here.
type Subscription struct {
	ID                string
	CustomerID        string
	ScheduleID        string // empty when no schedule is attached
	PriceID           string
	Cycle             types.BillingCycle
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
	Status            types.SubscriptionStatus
}

// EndBehavior controls what happens to a schedule once its final phase ends.
type EndBehavior string

const (
	// EndBehaviorRelease dissolves the schedule back into a plain subscription
	// running on the final phase's price.
	EndBehaviorRelease EndBehavior = "release"
	// EndBehaviorCancel cancels the subscription when the schedule ends.
	EndBehaviorCancel EndBehavior = "cancel"
)

// ProrationBehavior is the mid-period adjustment policy at a phase boundary.
type ProrationBehavior string

const (
	// ProrationNone is the only policy this subsystem ever writes: a downgrade
	// never introduces partial-period charges.
	ProrationNone ProrationBehavior = "none"
)

// Phase is one segment of a schedule's timeline. A nil Start means the phase
// takes effect the instant the schedule is written; a nil End means the phase
// runs indefinitely.
type Phase struct {
	Start     *time.Time
	End       *time.Time
	PriceID   string
	Proration ProrationBehavior
}

// Schedule is a provider-side phase timeline attached to a subscription.
type Schedule struct {
	ID             string
	CustomerID     string
	SubscriptionID string
	EndBehavior    EndBehavior
	Phases         []Phase
}

// TransitionPhases builds the only phase shape this subsystem produces: the
// current price locked in until the period end, then the target price with no
// end boundary and no proration.
func TransitionPhases(currentPriceID string, periodEnd time.Time, targetPriceID string) []Phase {
	return []Phase{
		{
			Start:     nil, // now
			End:       &periodEnd,
			PriceID:   currentPriceID,
			Proration: ProrationNone,
		},
		{
			Start:     &periodEnd,
			End:       nil, // runs indefinitely
			PriceID:   targetPriceID,
			Proration: ProrationNone,
		},
	}
}
