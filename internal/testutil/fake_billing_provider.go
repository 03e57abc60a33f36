package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/vastahq/vasta/internal/domain/billing"
	ierr "github.com/vastahq/vasta/internal/errors"
)

// FakeBillingProvider implements billing.Provider with scripted state. It
// records every call and mimics the provider's schedule semantics closely
// enough to exercise the downgrade paths without network access.
type FakeBillingProvider struct {
	mu sync.Mutex

	subscriptions map[string]*billing.Subscription
	schedules     map[string]*billing.Schedule
	failures      map[string]error
	calls         []string
	scheduleSeq   int
}

// NewFakeBillingProvider creates a new fake billing provider
func NewFakeBillingProvider() *FakeBillingProvider {
	return &FakeBillingProvider{
		subscriptions: make(map[string]*billing.Subscription),
		schedules:     make(map[string]*billing.Schedule),
		failures:      make(map[string]error),
	}
}

// SeedSubscription registers a subscription the provider will serve
func (f *FakeBillingProvider) SeedSubscription(sub *billing.Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *sub
	f.subscriptions[sub.ID] = &copied
}

// FailWith scripts an error for the named operation
func (f *FakeBillingProvider) FailWith(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

// Calls returns the ordered operation names invoked so far
func (f *FakeBillingProvider) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times the named operation ran
func (f *FakeBillingProvider) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, c := range f.calls {
		if c == op {
			count++
		}
	}
	return count
}

// Subscription returns the current fake-side subscription state
func (f *FakeBillingProvider) Subscription(id string) *billing.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub, ok := f.subscriptions[id]; ok {
		copied := *sub
		return &copied
	}
	return nil
}

// Schedules returns all fake-side schedules
func (f *FakeBillingProvider) Schedules() []*billing.Schedule {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*billing.Schedule, 0, len(f.schedules))
	for _, sched := range f.schedules {
		copied := *sched
		out = append(out, &copied)
	}
	return out
}

func (f *FakeBillingProvider) record(op string) error {
	f.calls = append(f.calls, op)
	if err, ok := f.failures[op]; ok {
		return err
	}
	return nil
}

func (f *FakeBillingProvider) GetSubscription(ctx context.Context, id string) (*billing.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("GetSubscription"); err != nil {
		return nil, err
	}

	sub, ok := f.subscriptions[id]
	if !ok {
		return nil, ierr.NewError("no such subscription").
			WithHint("No such subscription").
			Mark(ierr.ErrProvider)
	}
	copied := *sub
	return &copied, nil
}

func (f *FakeBillingProvider) GetSchedule(ctx context.Context, id string) (*billing.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("GetSchedule"); err != nil {
		return nil, err
	}

	sched, ok := f.schedules[id]
	if !ok {
		return nil, ierr.NewError("no such schedule").
			WithHint("No such schedule").
			Mark(ierr.ErrProvider)
	}
	copied := *sched
	return &copied, nil
}

func (f *FakeBillingProvider) ListSchedules(ctx context.Context, customerID string, limit int) ([]*billing.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("ListSchedules"); err != nil {
		return nil, err
	}

	var out []*billing.Schedule
	for _, sched := range f.schedules {
		if sched.CustomerID != customerID {
			continue
		}
		copied := *sched
		out = append(out, &copied)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *FakeBillingProvider) CreateScheduleFromSubscription(ctx context.Context, subscriptionID string) (*billing.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("CreateScheduleFromSubscription"); err != nil {
		return nil, err
	}

	sub, ok := f.subscriptions[subscriptionID]
	if !ok {
		return nil, ierr.NewError("no such subscription").
			WithHint("No such subscription").
			Mark(ierr.ErrProvider)
	}

	f.scheduleSeq++
	sched := &billing.Schedule{
		ID:             fmt.Sprintf("sub_sched_test%d", f.scheduleSeq),
		CustomerID:     sub.CustomerID,
		SubscriptionID: sub.ID,
		EndBehavior:    billing.EndBehaviorRelease,
		// seeded with a single phase mirroring the running subscription
		Phases: []billing.Phase{
			{
				End:       &sub.CurrentPeriodEnd,
				PriceID:   sub.PriceID,
				Proration: billing.ProrationNone,
			},
		},
	}
	f.schedules[sched.ID] = sched
	sub.ScheduleID = sched.ID

	copied := *sched
	return &copied, nil
}

func (f *FakeBillingProvider) UpdateSchedule(ctx context.Context, id string, phases []billing.Phase, endBehavior billing.EndBehavior) (*billing.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("UpdateSchedule"); err != nil {
		return nil, err
	}

	sched, ok := f.schedules[id]
	if !ok {
		return nil, ierr.NewError("no such schedule").
			WithHint("No such schedule").
			Mark(ierr.ErrProvider)
	}

	sched.Phases = append([]billing.Phase(nil), phases...)
	sched.EndBehavior = endBehavior

	copied := *sched
	return &copied, nil
}

func (f *FakeBillingProvider) UpdateSubscription(ctx context.Context, id string, cancelAtPeriodEnd bool) (*billing.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("UpdateSubscription"); err != nil {
		return nil, err
	}

	sub, ok := f.subscriptions[id]
	if !ok {
		return nil, ierr.NewError("no such subscription").
			WithHint("No such subscription").
			Mark(ierr.ErrProvider)
	}
	sub.CancelAtPeriodEnd = cancelAtPeriodEnd

	copied := *sub
	return &copied, nil
}
