package account

import (
	"time"

	"github.com/vastahq/vasta/internal/types"
)

// Account represents a creator account as the billing subsystem sees it:
// the current plan and the link to the provider subscription, if any.
type Account struct {
	// ID is the unique identifier for the account
	ID string `db:"id" json:"id"`

	// Username is the public storefront handle
	Username string `db:"username" json:"username"`

	// Email is the account owner's email
	Email string `db:"email" json:"email"`

	// PlanCode is the locally recorded subscription tier
	PlanCode types.PlanCode `db:"plan_code" json:"plan_code"`

	// SubscriptionID references the provider subscription. Empty is expected
	// for free-tier accounts and inconsistent for paid ones.
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`

	// SubscriptionStatus is the last known provider status, advisory only
	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasSubscription reports whether a provider subscription is attached.
func (a *Account) HasSubscription() bool {
	return a.SubscriptionID != ""
}

// IsInconsistent reports the one local-state drift this subsystem repairs: a
// paid plan recorded locally with no provider subscription behind it.
func (a *Account) IsInconsistent() bool {
	return !a.PlanCode.IsFree() && !a.HasSubscription()
}
