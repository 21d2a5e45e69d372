package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ActivityReader defines read operations for activity data
type ActivityReader interface {
	// FindActivityByID retrieves a specific activity by its unique identifier.
	FindActivityByID(ctx context.Context, activityID string) (*domain.Activity, error)

	// ListExpensesByActivity retrieves the recorded expenses of an activity, oldest first.
	ListExpensesByActivity(ctx context.Context, activityID string) ([]domain.ActivityExpense, error)
}

// ActivityWriter defines write operations for activity data
type ActivityWriter interface {
	// SaveActivity persists a new activity.
	SaveActivity(ctx context.Context, activity domain.Activity) error

	// SaveExpense records an expense item.
	SaveExpense(ctx context.Context, expense domain.ActivityExpense) error
}

// ActivityTransactionSupport defines operations that run under the activity row lock.
type ActivityTransactionSupport interface {
	// FindActivityForUpdate locks the activity row. Every mutation of the activity's
	// registration and cost-sharing set takes this lock first.
	FindActivityForUpdate(ctx context.Context, tx pgx.Tx, activityID string) (*domain.Activity, error)

	// UpdateActivityStatusInTx changes the organizer-controlled lifecycle status.
	UpdateActivityStatusInTx(ctx context.Context, tx pgx.Tx, activityID string, status domain.ActivityStatus, userID string, now time.Time) error

	// UpdateCostConfigInTx writes the organizer's cost configuration.
	UpdateCostConfigInTx(ctx context.Context, tx pgx.Tx, activity domain.Activity) error

	// UpdateDerivedFieldsInTx writes the recomputed participant count and per-person cost.
	UpdateDerivedFieldsInTx(ctx context.Context, tx pgx.Tx, activityID string, currentParticipants int, costPerPerson decimal.Decimal, now time.Time) error

	// SumExpensesInTx adds up the activity's recorded expenses.
	SumExpensesInTx(ctx context.Context, tx pgx.Tx, activityID string) (decimal.Decimal, error)
}

// ActivityRepositoryFacade combines all activity-related repository interfaces
type ActivityRepositoryFacade interface {
	ActivityReader
	ActivityWriter
	ActivityTransactionSupport
}
