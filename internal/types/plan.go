package types

import (
	ierr "github.com/vastahq/vasta/internal/errors"
)

// PlanCode identifies a subscription tier. Starter is the free tier and has no
// billing-provider subscription behind it.
type PlanCode string

const (
	PlanCodeStarter  PlanCode = "starter"
	PlanCodePro      PlanCode = "pro"
	PlanCodeBusiness PlanCode = "business"
)

func (p PlanCode) String() string {
	return string(p)
}

// IsFree reports whether the plan is the free tier.
func (p PlanCode) IsFree() bool {
	return p == PlanCodeStarter
}

func (p PlanCode) Validate() error {
	switch p {
	case PlanCodeStarter, PlanCodePro, PlanCodeBusiness:
		return nil
	default:
		return ierr.NewError("invalid plan code").
			WithHint("Invalid plan code").
			WithReportableDetails(map[string]any{
				"plan_code": string(p),
				"allowed":   []string{string(PlanCodeStarter), string(PlanCodePro), string(PlanCodeBusiness)},
			}).
			Mark(ierr.ErrValidation)
	}
}

// BillingCycle is the recurring interval of a subscription's price. A downgrade
// never changes the cycle; the target price is resolved for the cycle the
// subscription is already on.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

func (c BillingCycle) String() string {
	return string(c)
}

// SubscriptionStatus is the last status reported for an account's provider
// subscription. Advisory only, the provider remains the source of truth.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}
