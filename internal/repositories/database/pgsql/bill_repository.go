package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/costshare_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/costshare_ledger/internal/models"
	"github.com/SscSPs/costshare_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const billColumns = `
	bill_id, activity_id, creator_id, total_cost, expense_total_cost, base_total_cost,
	use_custom_total_cost, custom_total_cost, company_cost, participant_count,
	total_ratio, average_cost, status, bill_details, pushed_at, version,
	created_at, created_by, last_updated_at, last_updated_by`

// uqDraftBill allows at most one draft per activity.
const uqDraftBill = "uq_bills_one_draft"

type PgxBillRepository struct {
	BaseRepository
}

// newPgxBillRepository creates a new repository for bills.
func newPgxBillRepository(pool *pgxpool.Pool) portsrepo.BillRepositoryFacade {
	return &PgxBillRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BillRepositoryFacade = (*PgxBillRepository)(nil)

func scanBillModel(row pgx.Row) (models.Bill, error) {
	var m models.Bill
	err := row.Scan(
		&m.BillID,
		&m.ActivityID,
		&m.CreatorID,
		&m.TotalCost,
		&m.ExpenseTotalCost,
		&m.BaseTotalCost,
		&m.UseCustomTotalCost,
		&m.CustomTotalCost,
		&m.CompanyCost,
		&m.ParticipantCount,
		&m.TotalRatio,
		&m.AverageCost,
		&m.Status,
		&m.Details,
		&m.PushedAt,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func findBill(row pgx.Row, what string) (*domain.Bill, error) {
	m, err := scanBillModel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, what)
		}
		return nil, apperrors.NewAppError(500, "failed to find "+what, err)
	}
	bill, err := mapping.ToDomainBill(m)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode "+what, err)
	}
	return &bill, nil
}

// FindBillByID retrieves a bill by its ID.
func (r *PgxBillRepository) FindBillByID(ctx context.Context, billID string) (*domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE bill_id = $1;`
	return findBill(r.Pool.QueryRow(ctx, query, billID), "bill "+billID)
}

// FindLatestBillByActivity returns the newest bill of an activity.
func (r *PgxBillRepository) FindLatestBillByActivity(ctx context.Context, activityID string) (*domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE activity_id = $1 ORDER BY created_at DESC, bill_id DESC LIMIT 1;`
	return findBill(r.Pool.QueryRow(ctx, query, activityID), "bill for activity "+activityID)
}

// ListBillsByActivity pages an activity's bills, newest first.
func (r *PgxBillRepository) ListBillsByActivity(ctx context.Context, activityID string, status *domain.BillStatus, limit int, offset int) ([]domain.Bill, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + billColumns + ` FROM bills WHERE activity_id = $1`
	args := []any{activityID}
	if status != nil {
		args = append(args, string(*status))
		query += " AND status = $" + strconv.Itoa(len(args))
	}
	args = append(args, limit, offset)
	query += " ORDER BY created_at DESC, bill_id DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query bills of activity "+activityID, err)
	}
	defer rows.Close()

	bills := []domain.Bill{}
	for rows.Next() {
		m, err := scanBillModel(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan bill row", err)
		}
		bill, err := mapping.ToDomainBill(m)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to decode bill "+m.BillID, err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating bill rows", err)
	}
	return bills, nil
}

// FindDraftForUpdate locks the activity's draft bill.
func (r *PgxBillRepository) FindDraftForUpdate(ctx context.Context, tx pgx.Tx, activityID string) (*domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE activity_id = $1 AND status = 'draft' FOR UPDATE;`
	return findBill(tx.QueryRow(ctx, query, activityID), "draft bill for activity "+activityID)
}

// FindBillForUpdate locks a bill row.
func (r *PgxBillRepository) FindBillForUpdate(ctx context.Context, tx pgx.Tx, billID string) (*domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE bill_id = $1 FOR UPDATE;`
	return findBill(tx.QueryRow(ctx, query, billID), "bill "+billID)
}

// SaveBillInTx inserts a new bill.
func (r *PgxBillRepository) SaveBillInTx(ctx context.Context, tx pgx.Tx, bill domain.Bill) error {
	m, err := mapping.ToModelBill(bill)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode bill", err)
	}
	query := `
		INSERT INTO bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err = tx.Exec(ctx, query,
		m.BillID,
		m.ActivityID,
		m.CreatorID,
		m.TotalCost,
		m.ExpenseTotalCost,
		m.BaseTotalCost,
		m.UseCustomTotalCost,
		m.CustomTotalCost,
		m.CompanyCost,
		m.ParticipantCount,
		m.TotalRatio,
		m.AverageCost,
		m.Status,
		m.Details,
		m.PushedAt,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, uqDraftBill) {
			return fmt.Errorf("%w: activity %s already has a draft bill", apperrors.ErrDuplicate, m.ActivityID)
		}
		return apperrors.NewAppError(500, "failed to save bill "+m.BillID, err)
	}
	return nil
}

// UpdateBillInTx writes a bill guarded by its version. A stale version fails with ErrInvalidStateTransition.
func (r *PgxBillRepository) UpdateBillInTx(ctx context.Context, tx pgx.Tx, bill domain.Bill) error {
	m, err := mapping.ToModelBill(bill)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode bill", err)
	}
	query := `
		UPDATE bills
		SET total_cost = $3, expense_total_cost = $4, base_total_cost = $5,
		    use_custom_total_cost = $6, custom_total_cost = $7, company_cost = $8,
		    participant_count = $9, total_ratio = $10, average_cost = $11, status = $12,
		    bill_details = $13, pushed_at = $14, version = version + 1,
		    last_updated_at = $15, last_updated_by = $16
		WHERE bill_id = $1 AND version = $2;
	`
	ct, err := tx.Exec(ctx, query,
		m.BillID,
		m.Version,
		m.TotalCost,
		m.ExpenseTotalCost,
		m.BaseTotalCost,
		m.UseCustomTotalCost,
		m.CustomTotalCost,
		m.CompanyCost,
		m.ParticipantCount,
		m.TotalRatio,
		m.AverageCost,
		m.Status,
		m.Details,
		m.PushedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update bill "+m.BillID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: bill %s was modified concurrently", apperrors.ErrInvalidStateTransition, m.BillID)
	}
	return nil
}
