package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/costshare_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/costshare_ledger/internal/core/ports/services"
	"github.com/SscSPs/costshare_ledger/internal/dto"
	"github.com/SscSPs/costshare_ledger/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const defaultStatisticsWindowDays = 30

// LedgerService owns every balance mutation. Each mutation locks the account
// row, computes the next balance and appends exactly one transaction.
type LedgerService struct {
	BaseService
	txManager  portsrepo.TransactionManager
	ledgerRepo portsrepo.LedgerRepositoryFacade
	windowDays int
}

// LedgerServiceOption configures a LedgerService.
type LedgerServiceOption func(*LedgerService)

// WithLedgerMetrics attaches Prometheus counters.
func WithLedgerMetrics(m *metrics.Metrics) LedgerServiceOption {
	return func(s *LedgerService) {
		s.Metrics = m
	}
}

// WithStatisticsWindow sets the default look-back of GetStatistics.
func WithStatisticsWindow(days int) LedgerServiceOption {
	return func(s *LedgerService) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// WithLedgerClock overrides time.Now, for tests.
func WithLedgerClock(clock func() time.Time) LedgerServiceOption {
	return func(s *LedgerService) {
		s.Clock = clock
	}
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(txManager portsrepo.TransactionManager, ledgerRepo portsrepo.LedgerRepositoryFacade, opts ...LedgerServiceOption) *LedgerService {
	svc := &LedgerService{
		txManager:  txManager,
		ledgerRepo: ledgerRepo,
		windowDays: defaultStatisticsWindowDays,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*LedgerService)(nil)

// GetAccount returns the user's account, or a zero-balance view when none exists yet.
func (s *LedgerService) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	acc, err := s.ledgerRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.Account{UserID: userID, Balance: decimal.Zero}, nil
		}
		s.LogError(ctx, err, "Failed to get account", slog.String("user_id", userID))
		return nil, err
	}
	return acc, nil
}

// GetOrCreateAccount returns the user's account, creating it with a zero balance.
func (s *LedgerService) GetOrCreateAccount(ctx context.Context, userID string) (*domain.Account, error) {
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		return s.ledgerRepo.EnsureAccountInTx(ctx, tx, userID, s.Now())
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create account", slog.String("user_id", userID))
		return nil, err
	}
	return s.ledgerRepo.FindAccountByUserID(ctx, userID)
}

// ApplyTransaction moves money on one account in its own database transaction.
func (s *LedgerService) ApplyTransaction(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerResult, error) {
	var result *domain.LedgerResult
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		var err error
		result, err = s.ApplyTransactionInTx(ctx, tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.LedgerTransaction(string(entry.Type), entry.Amount.InexactFloat64())
	s.LogInfo(ctx, "Ledger transaction committed",
		slog.String("transaction_id", result.TransactionID),
		slog.String("user_id", entry.UserID),
		slog.String("type", string(entry.Type)),
		slog.String("amount", entry.Amount.StringFixed(domain.CurrencyScale)),
		slog.String("new_balance", result.NewBalance.StringFixed(domain.CurrencyScale)))
	return result, nil
}

// ApplyTransactionInTx moves money inside a caller-owned transaction.
// Nothing is written when the entry is invalid or the balance is insufficient.
func (s *LedgerService) ApplyTransactionInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) (*domain.LedgerResult, error) {
	if entry.UserID == "" {
		return nil, fmt.Errorf("%w: user ID is required", apperrors.ErrValidation)
	}
	if !entry.Type.IsValid() {
		s.Metrics.LedgerRejected("validation")
		return nil, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, entry.Type)
	}
	if err := domain.ValidateAmount(entry.Amount); err != nil {
		s.Metrics.LedgerRejected("validation")
		return nil, err
	}

	now := s.Now()
	actorID := entry.ActorID
	if actorID == "" {
		actorID = entry.UserID
	}

	if err := s.ledgerRepo.EnsureAccountInTx(ctx, tx, entry.UserID, now); err != nil {
		return nil, err
	}
	account, err := s.ledgerRepo.FindAccountForUpdate(ctx, tx, entry.UserID)
	if err != nil {
		return nil, err
	}

	newBalance, err := domain.NextBalance(account.Balance, entry.Type, entry.Amount)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			s.Metrics.LedgerRejected("insufficient_funds")
			s.LogInfo(ctx, "Ledger transaction rejected",
				slog.String("user_id", entry.UserID),
				slog.String("balance", account.Balance.StringFixed(domain.CurrencyScale)),
				slog.String("amount", entry.Amount.StringFixed(domain.CurrencyScale)))
		}
		return nil, err
	}

	if err := s.ledgerRepo.UpdateBalanceInTx(ctx, tx, entry.UserID, newBalance, actorID, now); err != nil {
		return nil, err
	}

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        entry.UserID,
		Amount:        entry.Amount,
		Type:          entry.Type,
		Description:   entry.Description,
		Status:        domain.TransactionCompleted,
		BalanceAfter:  newBalance,
		ReferenceID:   entry.ReferenceID,
		CreatedAt:     now,
		CreatedBy:     actorID,
	}
	if err := s.ledgerRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	return &domain.LedgerResult{
		TransactionID: txn.TransactionID,
		NewBalance:    newBalance,
		Transaction:   txn,
	}, nil
}

// ListTransactions pages through a user's ledger entries, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	filter := domain.TransactionFilter{From: params.From, To: params.To}
	if params.Type != "" {
		t := domain.TransactionType(params.Type)
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, params.Type)
		}
		filter.Type = &t
	}
	if params.From != nil && params.To != nil && !params.From.Before(*params.To) {
		return nil, fmt.Errorf("%w: from must be before to", apperrors.ErrValidation)
	}

	var nextToken *string
	if params.NextToken != "" {
		nextToken = &params.NextToken
	}

	txns, next, err := s.ledgerRepo.ListTransactionsByUserID(ctx, userID, filter, params.Limit, nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("user_id", userID))
		return nil, err
	}
	resp := dto.ToListTransactionsResponse(txns, next)
	return &resp, nil
}

// GetStatistics summarises the ledger over the last days; non-positive days use the configured window.
func (s *LedgerService) GetStatistics(ctx context.Context, days int) (*domain.LedgerStatistics, error) {
	if days <= 0 {
		days = s.windowDays
	}
	since := s.Now().AddDate(0, 0, -days)
	stats, err := s.ledgerRepo.GetStatistics(ctx, since)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute ledger statistics")
		return nil, err
	}
	return stats, nil
}
