package services

import (
	"context"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/SscSPs/costshare_ledger/internal/dto"
)

// BillReaderSvc defines read operations for bills and their notices
type BillReaderSvc interface {
	GetBill(ctx context.Context, billID string) (*domain.Bill, error)
	GetLatestBill(ctx context.Context, activityID string) (*domain.Bill, error)
	ListBills(ctx context.Context, activityID string, params dto.ListBillsParams) ([]domain.Bill, error)
	ListNotices(ctx context.Context, billID string, userID string) ([]domain.BillNotice, error)
	ListUserNotices(ctx context.Context, userID string) ([]domain.BillNotice, error)

	// ListUserMessages returns the user's inbox, newest first.
	ListUserMessages(ctx context.Context, userID string, limit int) ([]domain.Message, error)
}

// BillLifecycleSvc drives the bill through draft, saved and pushed
type BillLifecycleSvc interface {
	CreateOrUpdateDraft(ctx context.Context, activityID string, creatorID string, overrides domain.BillOverrides) (*domain.Bill, error)
	SaveBill(ctx context.Context, billID string, userID string) (*domain.Bill, error)

	// PushBill commits the pushed status together with the notice outbox, then dispatches.
	// Dispatch failures are reported in the results and never undo the push.
	PushBill(ctx context.Context, billID string, userID string) (*domain.Bill, []domain.DispatchResult, error)

	RetryDispatch(ctx context.Context, billID string, userID string) ([]domain.DispatchResult, error)
	MarkNoticePaid(ctx context.Context, noticeID string, userID string, req dto.MarkNoticePaidRequest) (*domain.BillNotice, error)
}

// BillSvcFacade combines all bill service interfaces
type BillSvcFacade interface {
	BillReaderSvc
	BillLifecycleSvc
}

// BillDispatcher hands pushed bill notices to the messaging collaborator.
type BillDispatcher interface {
	Dispatch(ctx context.Context, bill domain.Bill, activity domain.Activity, notices []domain.BillNotice) []domain.DispatchResult
}
