package pgsql

import (
	"context"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/costshare_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/costshare_ledger/internal/models"
	"github.com/SscSPs/costshare_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCostSharingRepository struct {
	BaseRepository
}

// newPgxCostSharingRepository creates a new repository for derived cost-sharing records.
func newPgxCostSharingRepository(pool *pgxpool.Pool) portsrepo.CostSharingRepository {
	return &PgxCostSharingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CostSharingRepository = (*PgxCostSharingRepository)(nil)

// ReplaceRecordsInTx swaps the activity's record set for records.
func (r *PgxCostSharingRepository) ReplaceRecordsInTx(ctx context.Context, tx pgx.Tx, activityID string, records []domain.CostSharingRecord) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cost_sharing_records WHERE activity_id = $1;`, activityID); err != nil {
		return apperrors.NewAppError(500, "failed to clear cost sharing records of activity "+activityID, err)
	}
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO cost_sharing_records (record_id, activity_id, registration_id, user_id, cost_type, amount, description, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	batch := &pgx.Batch{}
	for _, rec := range records {
		m := mapping.ToModelCostSharingRecord(rec)
		batch.Queue(query, m.RecordID, m.ActivityID, m.RegistrationID, m.UserID, m.CostType, m.Amount, m.Description, m.CalculatedAt)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = apperrors.NewAppError(500, "failed to insert cost sharing record "+records[i].RecordID, err)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = apperrors.NewAppError(500, "failed to close cost sharing batch", err)
	}
	return batchErr
}

// ListRecordsByActivity reads the current set without locking.
func (r *PgxCostSharingRepository) ListRecordsByActivity(ctx context.Context, activityID string) ([]domain.CostSharingRecord, error) {
	return r.list(ctx, r.Pool, activityID)
}

// ListRecordsByActivityInTx reads the current set inside a transaction.
func (r *PgxCostSharingRepository) ListRecordsByActivityInTx(ctx context.Context, tx pgx.Tx, activityID string) ([]domain.CostSharingRecord, error) {
	return r.list(ctx, tx, activityID)
}

func (r *PgxCostSharingRepository) list(ctx context.Context, q querier, activityID string) ([]domain.CostSharingRecord, error) {
	query := `
		SELECT record_id, activity_id, registration_id, user_id, cost_type, amount, description, calculated_at
		FROM cost_sharing_records
		WHERE activity_id = $1
		ORDER BY cost_type, calculated_at, record_id;
	`
	rows, err := q.Query(ctx, query, activityID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query cost sharing records of activity "+activityID, err)
	}
	defer rows.Close()

	records := []domain.CostSharingRecord{}
	for rows.Next() {
		var m models.CostSharingRecord
		if err := rows.Scan(&m.RecordID, &m.ActivityID, &m.RegistrationID, &m.UserID, &m.CostType, &m.Amount, &m.Description, &m.CalculatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan cost sharing record", err)
		}
		records = append(records, mapping.ToDomainCostSharingRecord(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating cost sharing records", err)
	}
	return records, nil
}
