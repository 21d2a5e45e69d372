package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerReader defines non-locking reads over accounts and the transaction log.
// Results are suitable for display only, never for balance checks.
type LedgerReader interface {
	// FindAccountByUserID returns ErrNotFound when the user has no account yet.
	FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error)

	// ListTransactionsByUserID pages through a user's ledger entries, newest first.
	// It returns the entries, a token for the next page, and an error.
	ListTransactionsByUserID(ctx context.Context, userID string, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// GetStatistics aggregates balances and ledger entries created since the given time.
	GetStatistics(ctx context.Context, since time.Time) (*domain.LedgerStatistics, error)
}

// LedgerTransactionSupport defines the locked operations a balance mutation runs inside one transaction.
type LedgerTransactionSupport interface {
	// EnsureAccountInTx creates a zero-balance account if the user has none.
	EnsureAccountInTx(ctx context.Context, tx pgx.Tx, userID string, now time.Time) error

	// FindAccountForUpdate locks the user's account row until the transaction ends.
	FindAccountForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Account, error)

	// UpdateBalanceInTx writes the new balance of a locked account.
	UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, userID string, balance decimal.Decimal, actorID string, now time.Time) error

	// SaveTransactionInTx appends a ledger entry.
	SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerTransactionSupport
}
