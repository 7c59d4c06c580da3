// Package port declares the interfaces the application services are wired
// through, so the bot and tests can swap implementations.
package port

import (
	"context"

	"cryptovision/internal/domain/entity"
)

// AccountRepository is the credential store consumed by the aggregator and
// the bot. Implementations return accounts with decrypted credentials.
type AccountRepository interface {
	EnsureUser(ctx context.Context, userID int64, username string) error
	ListAccounts(ctx context.Context, ownerID int64) ([]entity.Account, error)
	AddAccount(ctx context.Context, acc entity.Account) error
	DeleteAccount(ctx context.Context, accountID, ownerID int64) error
	DeleteAllUserData(ctx context.Context, ownerID int64) error
}

// PortfolioService aggregates balances across all of a user's accounts.
type PortfolioService interface {
	// Aggregate loads the user's accounts and produces the consolidated
	// portfolio. The returned error covers credential-store failures only;
	// per-account failures are data inside the portfolio.
	Aggregate(ctx context.Context, userID int64) (*entity.Portfolio, error)
}

// Advisor forwards a question plus a portfolio summary to a language model.
type Advisor interface {
	Advise(ctx context.Context, question, portfolioSummary string) (string, error)
}
