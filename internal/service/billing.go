package service

import (
	"context"
	"time"

	"github.com/vastahq/vasta/internal/api/dto"
	"github.com/vastahq/vasta/internal/domain/account"
	"github.com/vastahq/vasta/internal/domain/billing"
	ierr "github.com/vastahq/vasta/internal/errors"
	"github.com/vastahq/vasta/internal/logger"
	"github.com/vastahq/vasta/internal/plan"
	"github.com/vastahq/vasta/internal/types"
)

// BillingService owns plan transitions for an account: the downgrade state
// machine against the billing provider, repair of locally-inconsistent account
// state, and the webhook-driven sync that keeps the local record honest.
type BillingService interface {
	Downgrade(ctx context.Context, accountID string, req dto.DowngradeRequest) (*dto.DowngradeResponse, error)
	GetBillingStatus(ctx context.Context, accountID string) (*dto.BillingStatusResponse, error)
	SyncSubscription(ctx context.Context, subscriptionID string, priceID string, status types.SubscriptionStatus, cancelAtPeriodEnd bool) error
	SyncPaymentStatus(ctx context.Context, subscriptionID string, status types.SubscriptionStatus) error
	HandleSubscriptionDeleted(ctx context.Context, subscriptionID string) error
}

type billingService struct {
	accountRepo account.Repository
	provider    billing.Provider
	catalog     *plan.Catalog
	logger      *logger.Logger
}

func NewBillingService(
	accountRepo account.Repository,
	provider billing.Provider,
	catalog *plan.Catalog,
	logger *logger.Logger,
) BillingService {
	return &billingService{
		accountRepo: accountRepo,
		provider:    provider,
		catalog:     catalog,
		logger:      logger,
	}
}

// Downgrade resolves the account's entitlement state and drives the requested
// transition. No path ever revokes access before the end of the period the
// customer already paid for.
func (s *billingService) Downgrade(ctx context.Context, accountID string, req dto.DowngradeRequest) (*dto.DowngradeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	acc, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// The local record can drift from the provider (a lost subscription
	// link). With no subscription to change, a free target is repaired
	// locally and a paid target cannot be honored at all.
	if !acc.HasSubscription() {
		if req.TargetPlanCode.IsFree() {
			return s.repairToFree(ctx, acc)
		}

		return nil, ierr.NewError("no active subscription found to change").
			WithHint("No active subscription to change; contact support.").
			WithReportableDetails(map[string]any{
				"account_id": acc.ID,
				"plan_code":  acc.PlanCode.String(),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	sub, err := s.provider.GetSubscription(ctx, acc.SubscriptionID)
	if err != nil {
		return nil, err
	}

	if req.TargetPlanCode.IsFree() {
		return s.cancelAtPeriodEnd(ctx, sub)
	}

	return s.scheduleTransition(ctx, sub, req.TargetPlanCode)
}

// repairToFree fixes the one inconsistency this subsystem owns: a paid plan
// recorded locally with no provider subscription behind it. There is nothing
// at the provider to change, so the local record is rewritten directly.
func (s *billingService) repairToFree(ctx context.Context, acc *account.Account) (*dto.DowngradeResponse, error) {
	s.logger.Infow("repairing account state to free tier",
		"account_id", acc.ID,
		"recorded_plan", acc.PlanCode,
	)

	if err := s.accountRepo.UpdatePlan(ctx, acc.ID, types.PlanCodeStarter, types.SubscriptionStatusCanceled); err != nil {
		return nil, err
	}

	return &dto.DowngradeResponse{
		Message:       "Subscription canceled locally (state repair).",
		EffectiveDate: time.Now().UTC(),
	}, nil
}

// cancelAtPeriodEnd handles a downgrade to the free tier: a single provider
// mutation using the native cancel-at-period-end primitive. No schedule is
// involved because there is no next paid plan to transition into.
func (s *billingService) cancelAtPeriodEnd(ctx context.Context, sub *billing.Subscription) (*dto.DowngradeResponse, error) {
	if _, err := s.provider.UpdateSubscription(ctx, sub.ID, true); err != nil {
		return nil, err
	}

	s.logger.Infow("subscription scheduled to cancel at period end",
		"subscription_id", sub.ID,
		"effective_date", sub.CurrentPeriodEnd,
	)

	return &dto.DowngradeResponse{
		Message:       "Subscription scheduled to cancel at period end.",
		EffectiveDate: sub.CurrentPeriodEnd,
	}, nil
}

// scheduleTransition handles a downgrade to a different paid tier by writing a
// two-phase provider schedule: the current price locked in until the period
// end, then the target price indefinitely, with no proration at the boundary.
func (s *billingService) scheduleTransition(ctx context.Context, sub *billing.Subscription, target types.PlanCode) (*dto.DowngradeResponse, error) {
	// The cycle is inferred from the running price; a downgrade never
	// changes it.
	newPriceID, err := s.catalog.PriceID(target, sub.Cycle)
	if err != nil {
		return nil, err
	}

	scheduleID, state, err := s.resolveSchedule(ctx, sub)
	if err != nil {
		return nil, err
	}

	if state == billing.NoSchedule {
		created, err := s.provider.CreateScheduleFromSubscription(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		scheduleID = created.ID
		state = billing.ScheduleMirrorsCurrent

		s.logger.Infow("created schedule from subscription",
			"subscription_id", sub.ID,
			"schedule_id", scheduleID,
		)
	}

	phases := billing.TransitionPhases(sub.PriceID, sub.CurrentPeriodEnd, newPriceID)
	if _, err := s.provider.UpdateSchedule(ctx, scheduleID, phases, billing.EndBehaviorRelease); err != nil {
		return nil, err
	}

	s.logger.Infow("downgrade scheduled",
		"subscription_id", sub.ID,
		"schedule_id", scheduleID,
		"schedule_state_before", state,
		"schedule_state_after", billing.ScheduleHasTransition,
		"target_plan", target,
		"billing_cycle", sub.Cycle,
		"effective_date", sub.CurrentPeriodEnd,
	)

	return &dto.DowngradeResponse{
		Message:       "Downgrade scheduled successfully",
		EffectiveDate: sub.CurrentPeriodEnd,
	}, nil
}

// resolveSchedule re-derives the subscription's schedule state from the
// provider. The subscription's own schedule reference wins; failing that, the
// customer's listed active schedule is reused so a repeated downgrade never
// creates a second schedule.
func (s *billingService) resolveSchedule(ctx context.Context, sub *billing.Subscription) (string, billing.ScheduleState, error) {
	if sub.ScheduleID != "" {
		sched, err := s.provider.GetSchedule(ctx, sub.ScheduleID)
		if err != nil {
			return "", billing.NoSchedule, err
		}
		return sched.ID, billing.StateOf(sched), nil
	}

	schedules, err := s.provider.ListSchedules(ctx, sub.CustomerID, 1)
	if err != nil {
		return "", billing.NoSchedule, err
	}

	for _, sched := range schedules {
		if sched.SubscriptionID == sub.ID {
			return sched.ID, billing.StateOf(sched), nil
		}
	}

	return "", billing.NoSchedule, nil
}

func (s *billingService) GetBillingStatus(ctx context.Context, accountID string) (*dto.BillingStatusResponse, error) {
	acc, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	p, err := s.catalog.Get(acc.PlanCode)
	if err != nil {
		return nil, err
	}

	return &dto.BillingStatusResponse{
		PlanCode:           acc.PlanCode,
		PlanName:           p.Name,
		SubscriptionStatus: acc.SubscriptionStatus,
		HasSubscription:    acc.HasSubscription(),
	}, nil
}

// SyncSubscription records the provider-reported state on the linked account.
// The plan code is derived from the subscription's running price, so a
// scheduled transition lands locally when its next phase starts and the
// provider emits the update. Events for subscriptions this deployment does not
// know about are acknowledged without action.
func (s *billingService) SyncSubscription(ctx context.Context, subscriptionID string, priceID string, status types.SubscriptionStatus, cancelAtPeriodEnd bool) error {
	acc, err := s.accountRepo.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.logger.Debugw("webhook for unknown subscription, ignoring",
				"subscription_id", subscriptionID,
			)
			return nil
		}
		return err
	}

	// A pending cancellation keeps the account on its paid tier until the
	// period boundary; until the price actually changes, the recorded plan
	// stands.
	planCode := acc.PlanCode
	if mapped, ok := s.catalog.PlanForPriceID(priceID); ok {
		planCode = mapped
	} else if priceID != "" {
		s.logger.Warnw("subscription price not mapped to any plan, keeping recorded plan",
			"account_id", acc.ID,
			"subscription_id", subscriptionID,
			"price_id", priceID,
		)
	}

	if err := s.accountRepo.UpdatePlan(ctx, acc.ID, planCode, status); err != nil {
		return err
	}

	s.logger.Infow("synced subscription from provider",
		"account_id", acc.ID,
		"subscription_id", subscriptionID,
		"plan_code", planCode,
		"status", status,
		"cancel_at_period_end", cancelAtPeriodEnd,
	)

	return nil
}

// SyncPaymentStatus records an invoice outcome on the linked account. Only the
// advisory status moves; the plan stays whatever the subscription says it is.
func (s *billingService) SyncPaymentStatus(ctx context.Context, subscriptionID string, status types.SubscriptionStatus) error {
	acc, err := s.accountRepo.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.logger.Debugw("invoice webhook for unknown subscription, ignoring",
				"subscription_id", subscriptionID,
			)
			return nil
		}
		return err
	}

	if err := s.accountRepo.UpdatePlan(ctx, acc.ID, acc.PlanCode, status); err != nil {
		return err
	}

	s.logger.Infow("synced payment status from provider",
		"account_id", acc.ID,
		"subscription_id", subscriptionID,
		"status", status,
	)

	return nil
}

// HandleSubscriptionDeleted drops the linked account to the free tier once the
// provider reports the subscription gone.
func (s *billingService) HandleSubscriptionDeleted(ctx context.Context, subscriptionID string) error {
	acc, err := s.accountRepo.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.logger.Debugw("deletion webhook for unknown subscription, ignoring",
				"subscription_id", subscriptionID,
			)
			return nil
		}
		return err
	}

	if err := s.accountRepo.UpdateSubscription(ctx, acc.ID, "", types.SubscriptionStatusCanceled); err != nil {
		return err
	}
	if err := s.accountRepo.UpdatePlan(ctx, acc.ID, types.PlanCodeStarter, types.SubscriptionStatusCanceled); err != nil {
		return err
	}

	s.logger.Infow("subscription deleted, account moved to free tier",
		"account_id", acc.ID,
		"subscription_id", subscriptionID,
	)

	return nil
}
