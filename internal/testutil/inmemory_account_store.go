package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vastahq/vasta/internal/domain/account"
	ierr "github.com/vastahq/vasta/internal/errors"
	"github.com/vastahq/vasta/internal/types"
)

// InMemoryAccountStore implements account.Repository
type InMemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*account.Account
}

// NewInMemoryAccountStore creates a new in-memory account store
func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{
		accounts: make(map[string]*account.Account),
	}
}

// Helper to copy account
func copyAccount(a *account.Account) *account.Account {
	if a == nil {
		return nil
	}
	copied := *a
	return &copied
}

// Seed inserts an account directly, for test setup
func (s *InMemoryAccountStore) Seed(a *account.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = copyAccount(a)
}

func (s *InMemoryAccountStore) Get(ctx context.Context, id string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, ierr.NewError("account not found").
			WithHint("Account not found").
			Mark(ierr.ErrNotFound)
	}
	return copyAccount(a), nil
}

func (s *InMemoryAccountStore) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.SubscriptionID == subscriptionID && subscriptionID != "" {
			return copyAccount(a), nil
		}
	}
	return nil, ierr.NewError("account not found for subscription").
		WithHint("No account is linked to this subscription").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryAccountStore) UpdatePlan(ctx context.Context, id string, planCode types.PlanCode, status types.SubscriptionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return ierr.NewError("account not found").
			WithHint("Account not found").
			Mark(ierr.ErrNotFound)
	}
	a.PlanCode = planCode
	a.SubscriptionStatus = status
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryAccountStore) UpdateSubscription(ctx context.Context, id string, subscriptionID string, status types.SubscriptionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return ierr.NewError("account not found").
			WithHint("Account not found").
			Mark(ierr.ErrNotFound)
	}
	a.SubscriptionID = subscriptionID
	a.SubscriptionStatus = status
	a.UpdatedAt = time.Now().UTC()
	return nil
}
