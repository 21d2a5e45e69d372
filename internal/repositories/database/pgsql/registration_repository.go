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

const registrationColumns = `
	registration_id, activity_id, user_id, status, cost_amount, paid_amount,
	payment_status, cost_sharing_ratio, details, approved_by, approval_time,
	approval_note, payment_time, created_at, created_by, last_updated_at, last_updated_by`

// uqActiveRegistration is the partial unique index over live (pending/approved) registrations.
const uqActiveRegistration = "uq_registrations_active"

type PgxRegistrationRepository struct {
	BaseRepository
}

// newPgxRegistrationRepository creates a new repository for registrations.
func newPgxRegistrationRepository(pool *pgxpool.Pool) portsrepo.RegistrationRepositoryFacade {
	return &PgxRegistrationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RegistrationRepositoryFacade = (*PgxRegistrationRepository)(nil)

func scanRegistrationModel(row pgx.Row) (models.Registration, error) {
	var m models.Registration
	err := row.Scan(
		&m.RegistrationID,
		&m.ActivityID,
		&m.UserID,
		&m.Status,
		&m.CostAmount,
		&m.PaidAmount,
		&m.PaymentStatus,
		&m.CostSharingRatio,
		&m.Details,
		&m.ApprovedBy,
		&m.ApprovalTime,
		&m.ApprovalNote,
		&m.PaymentTime,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxRegistrationRepository) findOne(row pgx.Row, notFound string) (*domain.Registration, error) {
	m, err := scanRegistrationModel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrRegistrationNotFound, notFound)
		}
		return nil, apperrors.NewAppError(500, "failed to find registration", err)
	}
	reg, err := mapping.ToDomainRegistration(m)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode registration", err)
	}
	return &reg, nil
}

func (r *PgxRegistrationRepository) queryMany(ctx context.Context, q querier, query string, args ...any) ([]domain.Registration, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query registrations", err)
	}
	defer rows.Close()

	regs := []models.Registration{}
	for rows.Next() {
		m, err := scanRegistrationModel(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan registration row", err)
		}
		regs = append(regs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating registration rows", err)
	}

	out, err := mapping.ToDomainRegistrationSlice(regs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode registrations", err)
	}
	return out, nil
}

// FindRegistrationByID retrieves a registration without locking it.
func (r *PgxRegistrationRepository) FindRegistrationByID(ctx context.Context, registrationID string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE registration_id = $1;`
	return r.findOne(r.Pool.QueryRow(ctx, query, registrationID), "registration "+registrationID)
}

// FindRegistrationForUpdate locks a registration row.
func (r *PgxRegistrationRepository) FindRegistrationForUpdate(ctx context.Context, tx pgx.Tx, registrationID string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE registration_id = $1 FOR UPDATE;`
	return r.findOne(tx.QueryRow(ctx, query, registrationID), "registration "+registrationID)
}

// FindActiveRegistrationInTx returns the live registration of a user for an activity.
func (r *PgxRegistrationRepository) FindActiveRegistrationInTx(ctx context.Context, tx pgx.Tx, activityID, userID string) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE activity_id = $1 AND user_id = $2 AND status IN ('pending', 'approved')
		FOR UPDATE;
	`
	return r.findOne(tx.QueryRow(ctx, query, activityID, userID), "no active registration of user "+userID+" for activity "+activityID)
}

// ListRegistrationsByActivity lists an activity's registrations in sign-up order.
func (r *PgxRegistrationRepository) ListRegistrationsByActivity(ctx context.Context, activityID string, status *domain.RegistrationStatus) ([]domain.Registration, error) {
	if status != nil {
		query := `SELECT ` + registrationColumns + ` FROM registrations WHERE activity_id = $1 AND status = $2 ORDER BY created_at, registration_id;`
		return r.queryMany(ctx, r.Pool, query, activityID, string(*status))
	}
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE activity_id = $1 ORDER BY created_at, registration_id;`
	return r.queryMany(ctx, r.Pool, query, activityID)
}

// ListRegistrationsByUser lists a user's registrations, newest first.
func (r *PgxRegistrationRepository) ListRegistrationsByUser(ctx context.Context, userID string) ([]domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE user_id = $1 ORDER BY created_at DESC, registration_id DESC;`
	return r.queryMany(ctx, r.Pool, query, userID)
}

// ListApprovedInTx returns approved registrations in the order residual cents are assigned.
func (r *PgxRegistrationRepository) ListApprovedInTx(ctx context.Context, tx pgx.Tx, activityID string) ([]domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE activity_id = $1 AND status = 'approved'
		ORDER BY created_at, registration_id
		FOR UPDATE;
	`
	return r.queryMany(ctx, tx, query, activityID)
}

// SaveRegistrationInTx inserts a registration.
func (r *PgxRegistrationRepository) SaveRegistrationInTx(ctx context.Context, tx pgx.Tx, registration domain.Registration) error {
	m, err := mapping.ToModelRegistration(registration)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode registration", err)
	}
	query := `
		INSERT INTO registrations (` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = tx.Exec(ctx, query,
		m.RegistrationID,
		m.ActivityID,
		m.UserID,
		m.Status,
		m.CostAmount,
		m.PaidAmount,
		m.PaymentStatus,
		m.CostSharingRatio,
		m.Details,
		m.ApprovedBy,
		m.ApprovalTime,
		m.ApprovalNote,
		m.PaymentTime,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, uqActiveRegistration) {
			return fmt.Errorf("%w: user %s already has an active registration for activity %s", apperrors.ErrAlreadyRegistered, m.UserID, m.ActivityID)
		}
		return apperrors.NewAppError(500, "failed to save registration "+m.RegistrationID, err)
	}
	return nil
}

// UpdateRegistrationInTx writes the mutable fields of a registration.
func (r *PgxRegistrationRepository) UpdateRegistrationInTx(ctx context.Context, tx pgx.Tx, registration domain.Registration) error {
	m, err := mapping.ToModelRegistration(registration)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode registration", err)
	}
	query := `
		UPDATE registrations
		SET status = $2, cost_amount = $3, paid_amount = $4, payment_status = $5,
		    cost_sharing_ratio = $6, approved_by = $7, approval_time = $8, approval_note = $9,
		    payment_time = $10, last_updated_at = $11, last_updated_by = $12
		WHERE registration_id = $1;
	`
	ct, err := tx.Exec(ctx, query,
		m.RegistrationID,
		m.Status,
		m.CostAmount,
		m.PaidAmount,
		m.PaymentStatus,
		m.CostSharingRatio,
		m.ApprovedBy,
		m.ApprovalTime,
		m.ApprovalNote,
		m.PaymentTime,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, uqActiveRegistration) {
			return fmt.Errorf("%w: user %s already has an active registration for activity %s", apperrors.ErrAlreadyRegistered, m.UserID, m.ActivityID)
		}
		return apperrors.NewAppError(500, "failed to update registration "+m.RegistrationID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: registration %s", apperrors.ErrRegistrationNotFound, m.RegistrationID)
	}
	return nil
}

// CountOccupiedSeatsInTx counts approved and completed registrations of an activity.
func (r *PgxRegistrationRepository) CountOccupiedSeatsInTx(ctx context.Context, tx pgx.Tx, activityID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM registrations WHERE activity_id = $1 AND status IN ('approved', 'completed');`
	if err := tx.QueryRow(ctx, query, activityID).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count participants of activity "+activityID, err)
	}
	return count, nil
}

// UpdateCostAmountsInTx batch-writes the assigned share of each registration.
func (r *PgxRegistrationRepository) UpdateCostAmountsInTx(ctx context.Context, tx pgx.Tx, amounts map[string]decimal.Decimal, now time.Time) error {
	if len(amounts) == 0 {
		return nil
	}

	query := `
		UPDATE registrations
		SET cost_amount = $2, last_updated_at = $3
		WHERE registration_id = $1;
	`
	batch := &pgx.Batch{}
	ids := make([]string, 0, len(amounts))
	for id, amount := range amounts {
		batch.Queue(query, id, amount, now)
		ids = append(ids, id)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = apperrors.NewAppError(500, "failed to update cost amount of registration "+ids[i], err)
			}
		} else if ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = fmt.Errorf("%w: registration %s during cost update", apperrors.ErrRegistrationNotFound, ids[i])
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = apperrors.NewAppError(500, "failed to close cost amount batch", err)
	}
	return batchErr
}
