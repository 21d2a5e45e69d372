package services

import (
	"context"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/SscSPs/costshare_ledger/internal/dto"
	"github.com/jackc/pgx/v5"
)

// LedgerReaderSvc defines read operations over balances and history
type LedgerReaderSvc interface {
	// GetAccount returns the user's account, or a zero-balance view if none exists yet.
	GetAccount(ctx context.Context, userID string) (*domain.Account, error)

	// ListTransactions pages through the user's ledger entries.
	ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// GetStatistics summarises the ledger over the last days.
	GetStatistics(ctx context.Context, days int) (*domain.LedgerStatistics, error)
}

// LedgerWriterSvc defines balance mutations
type LedgerWriterSvc interface {
	// GetOrCreateAccount returns the user's account, creating it lazily.
	GetOrCreateAccount(ctx context.Context, userID string) (*domain.Account, error)

	// ApplyTransaction moves money on one account in its own transaction.
	ApplyTransaction(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerResult, error)

	// ApplyTransactionInTx moves money inside a caller-owned transaction so it commits
	// together with the caller's other writes.
	ApplyTransactionInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) (*domain.LedgerResult, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
