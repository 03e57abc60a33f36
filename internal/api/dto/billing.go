package dto

import (
	"time"

	"github.com/vastahq/vasta/internal/types"
	"github.com/vastahq/vasta/internal/validator"
)

// DowngradeRequest asks to move the caller's account to a lower tier at the
// end of the period already paid for.
type DowngradeRequest struct {
	TargetPlanCode types.PlanCode `json:"target_plan_code" validate:"required"`
}

func (r *DowngradeRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.TargetPlanCode.Validate()
}

// DowngradeResponse reports when the requested transition takes effect.
type DowngradeResponse struct {
	Message       string    `json:"message"`
	EffectiveDate time.Time `json:"effective_date"`
}

// BillingStatusResponse is the caller's locally recorded billing state, the
// data source for the dashboard billing page.
type BillingStatusResponse struct {
	PlanCode           types.PlanCode           `json:"plan_code"`
	PlanName           string                   `json:"plan_name"`
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status,omitempty"`
	HasSubscription    bool                     `json:"has_subscription"`
}
