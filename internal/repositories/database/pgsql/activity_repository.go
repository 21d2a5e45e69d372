package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/costshare_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/costshare_ledger/internal/models"
	"github.com/SscSPs/costshare_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const activityColumns = `
	activity_id, title, organizer_id, status, special_type, need_approval,
	total_cost, company_ratio, company_budget, cost_per_person,
	min_participants, max_participants, current_participants,
	payment_deadline, registration_deadline, cost_description,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxActivityRepository struct {
	BaseRepository
}

// newPgxActivityRepository creates a new repository for activities and their expenses.
func newPgxActivityRepository(pool *pgxpool.Pool) portsrepo.ActivityRepositoryFacade {
	return &PgxActivityRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ActivityRepositoryFacade = (*PgxActivityRepository)(nil)

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var m models.Activity
	err := row.Scan(
		&m.ActivityID,
		&m.Title,
		&m.OrganizerID,
		&m.Status,
		&m.SpecialType,
		&m.NeedApproval,
		&m.TotalCost,
		&m.CompanyRatio,
		&m.CompanyBudget,
		&m.CostPerPerson,
		&m.MinParticipants,
		&m.MaxParticipants,
		&m.CurrentParticipants,
		&m.PaymentDeadline,
		&m.RegistrationDeadline,
		&m.CostDescription,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	a := mapping.ToDomainActivity(m)
	return &a, nil
}

func activityLookupError(err error, activityID string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: activity %s", apperrors.ErrNotFound, activityID)
	}
	return apperrors.NewAppError(500, "failed to find activity "+activityID, err)
}

// FindActivityByID retrieves an activity by its ID.
func (r *PgxActivityRepository) FindActivityByID(ctx context.Context, activityID string) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE activity_id = $1;`
	a, err := scanActivity(r.Pool.QueryRow(ctx, query, activityID))
	if err != nil {
		return nil, activityLookupError(err, activityID)
	}
	return a, nil
}

// FindActivityForUpdate locks the activity row for the rest of the transaction.
func (r *PgxActivityRepository) FindActivityForUpdate(ctx context.Context, tx pgx.Tx, activityID string) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE activity_id = $1 FOR UPDATE;`
	a, err := scanActivity(tx.QueryRow(ctx, query, activityID))
	if err != nil {
		return nil, activityLookupError(err, activityID)
	}
	return a, nil
}

// SaveActivity inserts a new activity.
func (r *PgxActivityRepository) SaveActivity(ctx context.Context, activity domain.Activity) error {
	m := mapping.ToModelActivity(activity)
	query := `
		INSERT INTO activities (` + activityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ActivityID,
		m.Title,
		m.OrganizerID,
		m.Status,
		m.SpecialType,
		m.NeedApproval,
		m.TotalCost,
		m.CompanyRatio,
		m.CompanyBudget,
		m.CostPerPerson,
		m.MinParticipants,
		m.MaxParticipants,
		m.CurrentParticipants,
		m.PaymentDeadline,
		m.RegistrationDeadline,
		m.CostDescription,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: activity with ID %s already exists", apperrors.ErrDuplicate, m.ActivityID)
		}
		return apperrors.NewAppError(500, "failed to save activity "+m.ActivityID, err)
	}
	return nil
}

// UpdateActivityStatusInTx changes the organizer-controlled status of a locked activity.
func (r *PgxActivityRepository) UpdateActivityStatusInTx(ctx context.Context, tx pgx.Tx, activityID string, status domain.ActivityStatus, userID string, now time.Time) error {
	query := `
		UPDATE activities
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE activity_id = $1;
	`
	ct, err := tx.Exec(ctx, query, activityID, string(status), now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of activity "+activityID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: activity %s", apperrors.ErrNotFound, activityID)
	}
	return nil
}

// UpdateCostConfigInTx writes the cost configuration fields of a locked activity.
func (r *PgxActivityRepository) UpdateCostConfigInTx(ctx context.Context, tx pgx.Tx, activity domain.Activity) error {
	m := mapping.ToModelActivity(activity)
	query := `
		UPDATE activities
		SET special_type = $2, total_cost = $3, company_ratio = $4, company_budget = $5,
		    max_participants = $6, payment_deadline = $7, cost_description = $8,
		    last_updated_at = $9, last_updated_by = $10
		WHERE activity_id = $1;
	`
	ct, err := tx.Exec(ctx, query,
		m.ActivityID,
		m.SpecialType,
		m.TotalCost,
		m.CompanyRatio,
		m.CompanyBudget,
		m.MaxParticipants,
		m.PaymentDeadline,
		m.CostDescription,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update cost config of activity "+m.ActivityID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: activity %s", apperrors.ErrNotFound, m.ActivityID)
	}
	return nil
}

// UpdateDerivedFieldsInTx writes current_participants and cost_per_person.
func (r *PgxActivityRepository) UpdateDerivedFieldsInTx(ctx context.Context, tx pgx.Tx, activityID string, currentParticipants int, costPerPerson decimal.Decimal, now time.Time) error {
	query := `
		UPDATE activities
		SET current_participants = $2, cost_per_person = $3, last_updated_at = $4
		WHERE activity_id = $1;
	`
	ct, err := tx.Exec(ctx, query, activityID, currentParticipants, costPerPerson, now)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update derived fields of activity "+activityID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: activity %s", apperrors.ErrNotFound, activityID)
	}
	return nil
}

// SaveExpense records an expense item.
func (r *PgxActivityRepository) SaveExpense(ctx context.Context, expense domain.ActivityExpense) error {
	m := mapping.ToModelExpense(expense)
	query := `
		INSERT INTO activity_expenses (expense_id, activity_id, item, amount, expense_date, payer_id, description, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ExpenseID,
		m.ActivityID,
		m.Item,
		m.Amount,
		m.ExpenseDate,
		m.PayerID,
		m.Description,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save expense "+m.ExpenseID, err)
	}
	return nil
}

// ListExpensesByActivity retrieves an activity's expenses, oldest first.
func (r *PgxActivityRepository) ListExpensesByActivity(ctx context.Context, activityID string) ([]domain.ActivityExpense, error) {
	query := `
		SELECT expense_id, activity_id, item, amount, expense_date, payer_id, description, created_at, created_by, last_updated_at, last_updated_by
		FROM activity_expenses
		WHERE activity_id = $1
		ORDER BY expense_date, created_at, expense_id;
	`
	rows, err := r.Pool.Query(ctx, query, activityID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query expenses for activity "+activityID, err)
	}
	defer rows.Close()

	expenses := []models.ActivityExpense{}
	for rows.Next() {
		var m models.ActivityExpense
		if err := rows.Scan(
			&m.ExpenseID,
			&m.ActivityID,
			&m.Item,
			&m.Amount,
			&m.ExpenseDate,
			&m.PayerID,
			&m.Description,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan expense row", err)
		}
		expenses = append(expenses, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating expense rows", err)
	}
	return mapping.ToDomainExpenseSlice(expenses), nil
}

// SumExpensesInTx adds up the recorded expenses of an activity.
func (r *PgxActivityRepository) SumExpensesInTx(ctx context.Context, tx pgx.Tx, activityID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM activity_expenses WHERE activity_id = $1;`, activityID).Scan(&total)
	if err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum expenses for activity "+activityID, err)
	}
	return total, nil
}
