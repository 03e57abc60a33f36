package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/vastahq/vasta/internal/domain/account"
	ierr "github.com/vastahq/vasta/internal/errors"
	"github.com/vastahq/vasta/internal/logger"
	"github.com/vastahq/vasta/internal/postgres"
	"github.com/vastahq/vasta/internal/types"
)

type accountRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewAccountRepository creates a postgres-backed account repository
func NewAccountRepository(db *postgres.DB, logger *logger.Logger) account.Repository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) Get(ctx context.Context, id string) (*account.Account, error) {
	var acc account.Account
	query := `
		SELECT id, username, email, plan_code,
		       COALESCE(subscription_id, '') AS subscription_id,
		       COALESCE(subscription_status, '') AS subscription_status,
		       created_at, updated_at
		FROM accounts
		WHERE id = $1`

	if err := r.db.GetContext(ctx, &acc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("account not found").
				WithHint("Account not found").
				WithReportableDetails(map[string]any{"account_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load account").
			Mark(ierr.ErrDatabase)
	}

	return &acc, nil
}

func (r *accountRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*account.Account, error) {
	var acc account.Account
	query := `
		SELECT id, username, email, plan_code,
		       COALESCE(subscription_id, '') AS subscription_id,
		       COALESCE(subscription_status, '') AS subscription_status,
		       created_at, updated_at
		FROM accounts
		WHERE subscription_id = $1`

	if err := r.db.GetContext(ctx, &acc, query, subscriptionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("account not found for subscription").
				WithHint("No account is linked to this subscription").
				WithReportableDetails(map[string]any{"subscription_id": subscriptionID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load account").
			Mark(ierr.ErrDatabase)
	}

	return &acc, nil
}

func (r *accountRepository) UpdatePlan(ctx context.Context, id string, planCode types.PlanCode, status types.SubscriptionStatus) error {
	query := `
		UPDATE accounts
		SET plan_code = $2, subscription_status = $3, updated_at = $4
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, planCode, status, time.Now().UTC())
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update account plan").
			WithReportableDetails(map[string]any{"account_id": id}).
			Mark(ierr.ErrDatabase)
	}

	return r.requireRow(res, id)
}

func (r *accountRepository) UpdateSubscription(ctx context.Context, id string, subscriptionID string, status types.SubscriptionStatus) error {
	query := `
		UPDATE accounts
		SET subscription_id = NULLIF($2, ''), subscription_status = $3, updated_at = $4
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, subscriptionID, status, time.Now().UTC())
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update account subscription").
			WithReportableDetails(map[string]any{"account_id": id}).
			Mark(ierr.ErrDatabase)
	}

	return r.requireRow(res, id)
}

func (r *accountRepository) requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update account").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("account not found").
			WithHint("Account not found").
			WithReportableDetails(map[string]any{"account_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
