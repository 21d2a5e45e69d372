package repositories

import (
	"context"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// CostSharingRepository stores the derived cost-sharing set of each activity.
type CostSharingRepository interface {
	// ReplaceRecordsInTx deletes every record of the activity and inserts records in one go.
	ReplaceRecordsInTx(ctx context.Context, tx pgx.Tx, activityID string, records []domain.CostSharingRecord) error

	// ListRecordsByActivity reads the current set without locking.
	ListRecordsByActivity(ctx context.Context, activityID string) ([]domain.CostSharingRecord, error)

	// ListRecordsByActivityInTx reads the current set inside a transaction.
	ListRecordsByActivityInTx(ctx context.Context, tx pgx.Tx, activityID string) ([]domain.CostSharingRecord, error)
}
