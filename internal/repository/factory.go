package repository

import (
	"github.com/vastahq/vasta/internal/domain/account"
	"github.com/vastahq/vasta/internal/logger"
	"github.com/vastahq/vasta/internal/postgres"
	pgrepo "github.com/vastahq/vasta/internal/repository/postgres"
)

// NewAccountRepository creates the account repository
func NewAccountRepository(db *postgres.DB, logger *logger.Logger) account.Repository {
	return pgrepo.NewAccountRepository(db, logger)
}
