package account

import (
	"context"

	"github.com/vastahq/vasta/internal/types"
)

// Repository defines the interface for account data access
type Repository interface {
	Get(ctx context.Context, id string) (*Account, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*Account, error)
	UpdatePlan(ctx context.Context, id string, planCode types.PlanCode, status types.SubscriptionStatus) error
	UpdateSubscription(ctx context.Context, id string, subscriptionID string, status types.SubscriptionStatus) error
}
