package handlers_test

import (
	"context"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/costshare_ledger/internal/core/ports/services"
	"github.com/SscSPs/costshare_ledger/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockLedgerService) GetStatistics(ctx context.Context, days int) (*domain.LedgerStatistics, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerStatistics), args.Error(1)
}

func (m *MockLedgerService) GetOrCreateAccount(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerService) ApplyTransaction(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerResult, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerResult), args.Error(1)
}

func (m *MockLedgerService) ApplyTransactionInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) (*domain.LedgerResult, error) {
	args := m.Called(ctx, tx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerResult), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock ActivityService ---
type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) GetActivity(ctx context.Context, activityID string) (*domain.Activity, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityService) ListExpenses(ctx context.Context, activityID string) ([]domain.ActivityExpense, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActivityExpense), args.Error(1)
}

func (m *MockActivityService) GetCostSharing(ctx context.Context, activityID string) (*domain.Activity, []domain.CostSharingRecord, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Activity), args.Get(1).([]domain.CostSharingRecord), args.Error(2)
}

func (m *MockActivityService) CreateActivity(ctx context.Context, req dto.CreateActivityRequest, organizerID string) (*domain.Activity, error) {
	args := m.Called(ctx, req, organizerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityService) UpdateCostConfig(ctx context.Context, activityID string, req dto.UpdateCostConfigRequest, userID string) (*domain.Activity, error) {
	args := m.Called(ctx, activityID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityService) UpdateStatus(ctx context.Context, activityID string, status domain.ActivityStatus, userID string) (*domain.Activity, error) {
	args := m.Called(ctx, activityID, status, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityService) RecordExpense(ctx context.Context, activityID string, req dto.RecordExpenseRequest, userID string) (*domain.ActivityExpense, error) {
	args := m.Called(ctx, activityID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ActivityExpense), args.Error(1)
}

var _ portssvc.ActivitySvcFacade = (*MockActivityService)(nil)

// --- Mock RegistrationService ---
type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) GetRegistration(ctx context.Context, registrationID string, userID string) (*domain.Registration, error) {
	args := m.Called(ctx, registrationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}

func (m *MockRegistrationService) ListByActivity(ctx context.Context, activityID string, status *domain.RegistrationStatus) ([]domain.Registration, error) {
	args := m.Called(ctx, activityID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Registration), args.Error(1)
}

func (m *MockRegistrationService) ListByUser(ctx context.Context, userID string) ([]domain.Registration, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Registration), args.Error(1)
}

func (m *MockRegistrationService) Register(ctx context.Context, activityID string, userID string, details domain.RegistrationDetails) (*domain.Registration, error) {
	args := m.Called(ctx, activityID, userID, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}

func (m *MockRegistrationService) Approve(ctx context.Context, registrationID string, approverID string, action domain.ApprovalAction, note string) (*domain.Registration, error) {
	args := m.Called(ctx, registrationID, approverID, action, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}

func (m *MockRegistrationService) Cancel(ctx context.Context, registrationID string, userID string, opts domain.CancelOptions) (*domain.CancelResult, error) {
	args := m.Called(ctx, registrationID, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CancelResult), args.Error(1)
}

func (m *MockRegistrationService) Complete(ctx context.Context, registrationID string, userID string) (*domain.Registration, error) {
	args := m.Called(ctx, registrationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}

func (m *MockRegistrationService) SetCostSharingRatio(ctx context.Context, registrationID string, userID string, ratio decimal.Decimal) (*domain.Registration, error) {
	args := m.Called(ctx, registrationID, userID, ratio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}

func (m *MockRegistrationService) Pay(ctx context.Context, registrationID string, userID string) (*domain.PaymentResult, error) {
	args := m.Called(ctx, registrationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}

func (m *MockRegistrationService) Refund(ctx context.Context, registrationID string, userID string) (*domain.RefundResult, error) {
	args := m.Called(ctx, registrationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundResult), args.Error(1)
}

func (m *MockRegistrationService) Recalculate(ctx context.Context, activityID string, userID string) ([]domain.CostSharingRecord, error) {
	args := m.Called(ctx, activityID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CostSharingRecord), args.Error(1)
}

var _ portssvc.RegistrationSvcFacade = (*MockRegistrationService)(nil)

// --- Mock BillService ---
type MockBillService struct {
	mock.Mock
}

func (m *MockBillService) GetBill(ctx context.Context, billID string) (*domain.Bill, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillService) GetLatestBill(ctx context.Context, activityID string) (*domain.Bill, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillService) ListBills(ctx context.Context, activityID string, params dto.ListBillsParams) ([]domain.Bill, error) {
	args := m.Called(ctx, activityID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bill), args.Error(1)
}

func (m *MockBillService) ListNotices(ctx context.Context, billID string, userID string) ([]domain.BillNotice, error) {
	args := m.Called(ctx, billID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BillNotice), args.Error(1)
}

func (m *MockBillService) ListUserNotices(ctx context.Context, userID string) ([]domain.BillNotice, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BillNotice), args.Error(1)
}

func (m *MockBillService) ListUserMessages(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockBillService) CreateOrUpdateDraft(ctx context.Context, activityID string, creatorID string, overrides domain.BillOverrides) (*domain.Bill, error) {
	args := m.Called(ctx, activityID, creatorID, overrides)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillService) SaveBill(ctx context.Context, billID string, userID string) (*domain.Bill, error) {
	args := m.Called(ctx, billID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillService) PushBill(ctx context.Context, billID string, userID string) (*domain.Bill, []domain.DispatchResult, error) {
	args := m.Called(ctx, billID, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Bill), args.Get(1).([]domain.DispatchResult), args.Error(2)
}

func (m *MockBillService) RetryDispatch(ctx context.Context, billID string, userID string) ([]domain.DispatchResult, error) {
	args := m.Called(ctx, billID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DispatchResult), args.Error(1)
}

func (m *MockBillService) MarkNoticePaid(ctx context.Context, noticeID string, userID string, req dto.MarkNoticePaidRequest) (*domain.BillNotice, error) {
	args := m.Called(ctx, noticeID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BillNotice), args.Error(1)
}

var _ portssvc.BillSvcFacade = (*MockBillService)(nil)
