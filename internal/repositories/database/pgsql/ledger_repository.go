package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/costshare_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/costshare_ledger/internal/models"
	"github.com/SscSPs/costshare_ledger/internal/utils/mapping"
	"github.com/SscSPs/costshare_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, user_id, amount, type, description, status, balance_after, reference_id, created_at, created_by`

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for accounts and their transaction log.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var m models.Account
	err := row.Scan(&m.UserID, &m.Balance, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	if err != nil {
		return nil, err
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

func scanTransaction(rows pgx.Rows) (models.Transaction, error) {
	var t models.Transaction
	err := rows.Scan(
		&t.TransactionID,
		&t.UserID,
		&t.Amount,
		&t.Type,
		&t.Description,
		&t.Status,
		&t.BalanceAfter,
		&t.ReferenceID,
		&t.CreatedAt,
		&t.CreatedBy,
	)
	return t, err
}

// FindAccountByUserID retrieves an account without locking it.
func (r *PgxLedgerRepository) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	query := `
		SELECT user_id, balance, created_at, created_by, last_updated_at, last_updated_by
		FROM accounts
		WHERE user_id = $1;
	`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account for user %s", apperrors.ErrNotFound, userID)
		}
		return nil, apperrors.NewAppError(500, "failed to find account for user "+userID, err)
	}
	return acc, nil
}

// EnsureAccountInTx creates a zero-balance account unless one already exists.
func (r *PgxLedgerRepository) EnsureAccountInTx(ctx context.Context, tx pgx.Tx, userID string, now time.Time) error {
	query := `
		INSERT INTO accounts (user_id, balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, 0, $2, $1, $2, $1)
		ON CONFLICT (user_id) DO NOTHING;
	`
	if _, err := tx.Exec(ctx, query, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to ensure account for user "+userID, err)
	}
	return nil
}

// FindAccountForUpdate locks the user's account row.
func (r *PgxLedgerRepository) FindAccountForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Account, error) {
	query := `
		SELECT user_id, balance, created_at, created_by, last_updated_at, last_updated_by
		FROM accounts
		WHERE user_id = $1
		FOR UPDATE;
	`
	acc, err := scanAccount(tx.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account for user %s", apperrors.ErrNotFound, userID)
		}
		return nil, apperrors.NewAppError(500, "failed to lock account for user "+userID, err)
	}
	return acc, nil
}

// UpdateBalanceInTx writes the new balance of a locked account.
func (r *PgxLedgerRepository) UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, userID string, balance decimal.Decimal, actorID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE user_id = $1;
	`
	ct, err := tx.Exec(ctx, query, userID, balance, now, actorID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update balance for user "+userID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: account for user %s not found during balance update", apperrors.ErrNotFound, userID)
	}
	return nil
}

// SaveTransactionInTx appends a ledger entry.
func (r *PgxLedgerRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.UserID,
		m.Amount,
		m.Type,
		m.Description,
		m.Status,
		m.BalanceAfter,
		m.ReferenceID,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert transaction "+m.TransactionID, err)
	}
	return nil
}

// ListTransactionsByUserID retrieves a user's transactions newest first using keyset pagination.
// It returns the transactions, a token for the next page, and an error.
func (r *PgxLedgerRepository) ListTransactionsByUserID(ctx context.Context, userID string, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// One extra row tells us whether another page exists.
	fetchLimit := limit + 1

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}

	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		query += " AND type = $" + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += " AND created_at >= $" + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += " AND created_at < $" + strconv.Itoa(len(args))
	}
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		args = append(args, lastCreatedAt, lastID)
		query += " AND (created_at, transaction_id) < ($" + strconv.Itoa(len(args)-1) + ", $" + strconv.Itoa(len(args)) + ")"
	}
	args = append(args, fetchLimit)
	query += " ORDER BY created_at DESC, transaction_id DESC LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions for user "+userID, err)
	}
	defer rows.Close()

	results := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row for user "+userID, err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows for user "+userID, err)
	}

	var nextTokenVal *string
	if len(results) > limit {
		last := results[limit-1]
		token := pagination.EncodeCursor(last.CreatedAt, last.TransactionID)
		nextTokenVal = &token
		results = results[:limit]
	}

	return mapping.ToDomainTransactionSlice(results), nextTokenVal, nil
}

// GetStatistics aggregates account balances and the ledger entries written since the given time.
func (r *PgxLedgerRepository) GetStatistics(ctx context.Context, since time.Time) (*domain.LedgerStatistics, error) {
	stats := &domain.LedgerStatistics{
		Since:  since,
		ByType: make(map[domain.TransactionType]domain.TransactionTypeTotals),
	}

	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(balance), 0) FROM accounts;`).
		Scan(&stats.AccountCount, &stats.TotalBalance)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to aggregate account balances", err)
	}

	query := `
		SELECT type, COUNT(*), COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE created_at >= $1
		GROUP BY type;
	`
	rows, err := r.Pool.Query(ctx, query, since)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to aggregate transactions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txType string
		var totals domain.TransactionTypeTotals
		if err := rows.Scan(&txType, &totals.Count, &totals.Amount); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction totals", err)
		}
		stats.ByType[domain.TransactionType(txType)] = totals
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction totals", err)
	}
	return stats, nil
}
