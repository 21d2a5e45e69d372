package services

import (
	"context"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/SscSPs/costshare_ledger/internal/dto"
)

// ActivityReaderSvc defines read operations for activities
type ActivityReaderSvc interface {
	GetActivity(ctx context.Context, activityID string) (*domain.Activity, error)
	ListExpenses(ctx context.Context, activityID string) ([]domain.ActivityExpense, error)

	// GetCostSharing returns the activity together with its current cost-sharing records.
	GetCostSharing(ctx context.Context, activityID string) (*domain.Activity, []domain.CostSharingRecord, error)
}

// ActivityWriterSvc defines organizer operations on activities
type ActivityWriterSvc interface {
	CreateActivity(ctx context.Context, req dto.CreateActivityRequest, organizerID string) (*domain.Activity, error)

	// UpdateCostConfig fails with ErrCostConfigLocked once any registration is approved.
	UpdateCostConfig(ctx context.Context, activityID string, req dto.UpdateCostConfigRequest, userID string) (*domain.Activity, error)

	UpdateStatus(ctx context.Context, activityID string, status domain.ActivityStatus, userID string) (*domain.Activity, error)
	RecordExpense(ctx context.Context, activityID string, req dto.RecordExpenseRequest, userID string) (*domain.ActivityExpense, error)
}

// ActivitySvcFacade combines all activity service interfaces
type ActivitySvcFacade interface {
	ActivityReaderSvc
	ActivityWriterSvc
}
