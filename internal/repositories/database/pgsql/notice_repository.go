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
)

const noticeColumns = `
	notice_id, bill_id, activity_id, user_id, amount, cost_sharing_ratio, payment_deadline,
	cost_sharing_record_id, payment_status, payment_time, payment_method, payment_note,
	delivery_status, attempts, last_error, delivered_at, created_at`

type PgxNoticeRepository struct {
	BaseRepository
}

// newPgxNoticeRepository creates a new repository for bill notices.
func newPgxNoticeRepository(pool *pgxpool.Pool) portsrepo.NoticeRepository {
	return &PgxNoticeRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.NoticeRepository = (*PgxNoticeRepository)(nil)

func scanNotice(row pgx.Row) (domain.BillNotice, error) {
	var m models.BillNotice
	err := row.Scan(
		&m.NoticeID,
		&m.BillID,
		&m.ActivityID,
		&m.UserID,
		&m.Amount,
		&m.CostSharingRatio,
		&m.PaymentDeadline,
		&m.CostSharingRecordID,
		&m.PaymentStatus,
		&m.PaymentTime,
		&m.PaymentMethod,
		&m.PaymentNote,
		&m.DeliveryStatus,
		&m.Attempts,
		&m.LastError,
		&m.DeliveredAt,
		&m.CreatedAt,
	)
	if err != nil {
		return domain.BillNotice{}, err
	}
	return mapping.ToDomainBillNotice(m), nil
}

// SaveNoticesInTx inserts the notices of a bill in one batch.
func (r *PgxNoticeRepository) SaveNoticesInTx(ctx context.Context, tx pgx.Tx, notices []domain.BillNotice) error {
	if len(notices) == 0 {
		return nil
	}
	query := `
		INSERT INTO bill_notices (` + noticeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	batch := &pgx.Batch{}
	for _, n := range notices {
		m := mapping.ToModelBillNotice(n)
		batch.Queue(query,
			m.NoticeID, m.BillID, m.ActivityID, m.UserID, m.Amount, m.CostSharingRatio, m.PaymentDeadline,
			m.CostSharingRecordID, m.PaymentStatus, m.PaymentTime, m.PaymentMethod, m.PaymentNote,
			m.DeliveryStatus, m.Attempts, m.LastError, m.DeliveredAt, m.CreatedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = apperrors.NewAppError(500, "failed to insert bill notice "+notices[i].NoticeID, err)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = apperrors.NewAppError(500, "failed to close bill notice batch", err)
	}
	return batchErr
}

// FindNoticeByID retrieves a single notice.
func (r *PgxNoticeRepository) FindNoticeByID(ctx context.Context, noticeID string) (*domain.BillNotice, error) {
	query := `SELECT ` + noticeColumns + ` FROM bill_notices WHERE notice_id = $1;`
	n, err := scanNotice(r.Pool.QueryRow(ctx, query, noticeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: bill notice %s", apperrors.ErrNotFound, noticeID)
		}
		return nil, apperrors.NewAppError(500, "failed to find bill notice "+noticeID, err)
	}
	return &n, nil
}

// ListNoticesByBill lists the notices of a bill.
func (r *PgxNoticeRepository) ListNoticesByBill(ctx context.Context, billID string) ([]domain.BillNotice, error) {
	query := `SELECT ` + noticeColumns + ` FROM bill_notices WHERE bill_id = $1 ORDER BY created_at, notice_id;`
	return r.list(ctx, query, billID)
}

// ListNoticesByUser lists a user's notices, newest first.
func (r *PgxNoticeRepository) ListNoticesByUser(ctx context.Context, userID string) ([]domain.BillNotice, error) {
	query := `SELECT ` + noticeColumns + ` FROM bill_notices WHERE user_id = $1 ORDER BY created_at DESC, notice_id DESC;`
	return r.list(ctx, query, userID)
}

func (r *PgxNoticeRepository) list(ctx context.Context, query string, arg string) ([]domain.BillNotice, error) {
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query bill notices", err)
	}
	defer rows.Close()

	notices := []domain.BillNotice{}
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan bill notice row", err)
		}
		notices = append(notices, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating bill notice rows", err)
	}
	return notices, nil
}

// UpdateDeliveryStatus records the outcome of one delivery attempt.
func (r *PgxNoticeRepository) UpdateDeliveryStatus(ctx context.Context, noticeID string, status domain.DeliveryStatus, lastError string, now time.Time) error {
	query := `
		UPDATE bill_notices
		SET delivery_status = $2,
		    last_error = $3,
		    attempts = attempts + 1,
		    delivered_at = CASE WHEN $2 = 'delivered' THEN $4 ELSE delivered_at END
		WHERE notice_id = $1;
	`
	ct, err := r.Pool.Exec(ctx, query, noticeID, string(status), lastError, now)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update delivery status of notice "+noticeID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: bill notice %s", apperrors.ErrNotFound, noticeID)
	}
	return nil
}

// MarkNoticePaid records payment bookkeeping on one notice.
func (r *PgxNoticeRepository) MarkNoticePaid(ctx context.Context, noticeID string, paidAt time.Time, method string, note string) error {
	query := `
		UPDATE bill_notices
		SET payment_status = 'paid', payment_time = $2, payment_method = $3, payment_note = $4
		WHERE notice_id = $1;
	`
	ct, err := r.Pool.Exec(ctx, query, noticeID, paidAt, method, note)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark notice "+noticeID+" paid", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: bill notice %s", apperrors.ErrNotFound, noticeID)
	}
	return nil
}

// MarkActivityNoticesPaidInTx marks a user's outstanding notices of an activity as paid.
func (r *PgxNoticeRepository) MarkActivityNoticesPaidInTx(ctx context.Context, tx pgx.Tx, activityID, userID string, paidAt time.Time) error {
	query := `
		UPDATE bill_notices
		SET payment_status = 'paid', payment_time = $3, payment_method = 'balance'
		WHERE activity_id = $1 AND user_id = $2 AND payment_status <> 'paid';
	`
	if _, err := tx.Exec(ctx, query, activityID, userID, paidAt); err != nil {
		return apperrors.NewAppError(500, "failed to mark notices paid for user "+userID, err)
	}
	return nil
}
