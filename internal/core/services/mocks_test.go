package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockTxManager is a mock type for the TransactionManager interface.
// Begin hands out a nil pgx.Tx; repository mocks never touch it.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// expectTx wires a transaction that begins cleanly and may commit or roll back.
func expectTx(m *MockTxManager) {
	m.On("Begin", mock.Anything).Return(nil, nil)
	m.On("Commit", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Rollback", mock.Anything, mock.Anything).Return(nil).Maybe()
}

// --- Ledger ---

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerRepository) ListTransactionsByUserID(ctx context.Context, userID string, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, userID, filter, limit, nextToken)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), next, args.Error(2)
}

func (m *MockLedgerRepository) GetStatistics(ctx context.Context, since time.Time) (*domain.LedgerStatistics, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerStatistics), args.Error(1)
}

func (m *MockLedgerRepository) EnsureAccountInTx(ctx context.Context, tx pgx.Tx, userID string, now time.Time) error {
	args := m.Called(ctx, tx, userID, now)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindAccountForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Account, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerRepository) UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, userID string, balance decimal.Decimal, actorID string, now time.Time) error {
	args := m.Called(ctx, tx, userID, balance, actorID, now)
	return args.Error(0)
}

func (m *MockLedgerRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

type MockLedgerWriter struct {
	mock.Mock
}

func (m *MockLedgerWriter) GetOrCreateAccount(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerWriter) ApplyTransaction(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerResult, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerResult), args.Error(1)
}

func (m *MockLedgerWriter) ApplyTransactionInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) (*domain.LedgerResult, error) {
	args := m.Called(ctx, tx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerResult), args.Error(1)
}

// --- Activity ---

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) FindActivityByID(ctx context.Context, activityID string) (*domain.Activity, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityRepository) ListExpensesByActivity(ctx context.Context, activityID string) ([]domain.ActivityExpense, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActivityExpense), args.Error(1)
}

func (m *MockActivityRepository) SaveActivity(ctx context.Context, activity domain.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) UpdateActivityStatusInTx(ctx context.Context, tx pgx.Tx, activityID string, status domain.ActivityStatus, userID string, now time.Time) error {
	args := m.Called(ctx, tx, activityID, status, userID, now)
	return args.Error(0)
}

func (m *MockActivityRepository) SaveExpense(ctx context.Context, expense domain.ActivityExpense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockActivityRepository) FindActivityForUpdate(ctx context.Context, tx pgx.Tx, activityID string) (*domain.Activity, error) {
	args := m.Called(ctx, tx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityRepository) UpdateCostConfigInTx(ctx context.Context, tx pgx.Tx, activity domain.Activity) error {
	args := m.Called(ctx, tx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) UpdateDerivedFieldsInTx(ctx context.Context, tx pgx.Tx, activityID string, currentParticipants int, costPerPerson decimal.Decimal, now time.Time) error {
	args := m.Called(ctx, tx, activityID, currentParticipants, costPerPerson, now)
	return args.Error(0)
}

func (m *MockActivityRepository) SumExpensesInTx(ctx context.Context, tx pgx.Tx, activityID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, activityID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Registration ---

type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) FindRegistrationByID(ctx context.Context, registrationID string) (*domain.Registration, error) {
	args := m.Called(ctx, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) ListRegistrationsByActivity(ctx context.Context, activityID string, status *domain.RegistrationStatus) ([]domain.Registration, error) {
	args := m.Called(ctx, activityID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) ListRegistrationsByUser(ctx context.Context, userID string) ([]domain.Registration, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindRegistrationForUpdate(ctx context.Context, tx pgx.Tx, registrationID string) (*domain.Registration, error) {
	args := m.Called(ctx, tx, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindActiveRegistrationInTx(ctx context.Context, tx pgx.Tx, activityID, userID string) (*domain.Registration, error) {
	args := m.Called(ctx, tx, activityID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) SaveRegistrationInTx(ctx context.Context, tx pgx.Tx, registration domain.Registration) error {
	args := m.Called(ctx, tx, registration)
	return args.Error(0)
}

func (m *MockRegistrationRepository) UpdateRegistrationInTx(ctx context.Context, tx pgx.Tx, registration domain.Registration) error {
	args := m.Called(ctx, tx, registration)
	return args.Error(0)
}

func (m *MockRegistrationRepository) CountOccupiedSeatsInTx(ctx context.Context, tx pgx.Tx, activityID string) (int, error) {
	args := m.Called(ctx, tx, activityID)
	return args.Int(0), args.Error(1)
}

// ListApprovedInTx also accepts a func() []domain.Registration so tests can
// include rows saved earlier in the same call.
func (m *MockRegistrationRepository) ListApprovedInTx(ctx context.Context, tx pgx.Tx, activityID string) ([]domain.Registration, error) {
	args := m.Called(ctx, tx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func() []domain.Registration); ok {
		return fn(), args.Error(1)
	}
	return args.Get(0).([]domain.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) UpdateCostAmountsInTx(ctx context.Context, tx pgx.Tx, amounts map[string]decimal.Decimal, now time.Time) error {
	args := m.Called(ctx, tx, amounts, now)
	return args.Error(0)
}

// --- Cost sharing ---

type MockCostSharingRepository struct {
	mock.Mock
}

func (m *MockCostSharingRepository) ReplaceRecordsInTx(ctx context.Context, tx pgx.Tx, activityID string, records []domain.CostSharingRecord) error {
	args := m.Called(ctx, tx, activityID, records)
	return args.Error(0)
}

func (m *MockCostSharingRepository) ListRecordsByActivity(ctx context.Context, activityID string) ([]domain.CostSharingRecord, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CostSharingRecord), args.Error(1)
}

func (m *MockCostSharingRepository) ListRecordsByActivityInTx(ctx context.Context, tx pgx.Tx, activityID string) ([]domain.CostSharingRecord, error) {
	args := m.Called(ctx, tx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CostSharingRecord), args.Error(1)
}

// --- Bills ---

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindBillByID(ctx context.Context, billID string) (*domain.Bill, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillRepository) FindLatestBillByActivity(ctx context.Context, activityID string) (*domain.Bill, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillRepository) ListBillsByActivity(ctx context.Context, activityID string, status *domain.BillStatus, limit int, offset int) ([]domain.Bill, error) {
	args := m.Called(ctx, activityID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bill), args.Error(1)
}

func (m *MockBillRepository) FindDraftForUpdate(ctx context.Context, tx pgx.Tx, activityID string) (*domain.Bill, error) {
	args := m.Called(ctx, tx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillRepository) FindBillForUpdate(ctx context.Context, tx pgx.Tx, billID string) (*domain.Bill, error) {
	args := m.Called(ctx, tx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillRepository) SaveBillInTx(ctx context.Context, tx pgx.Tx, bill domain.Bill) error {
	args := m.Called(ctx, tx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) UpdateBillInTx(ctx context.Context, tx pgx.Tx, bill domain.Bill) error {
	args := m.Called(ctx, tx, bill)
	return args.Error(0)
}

type MockNoticeRepository struct {
	mock.Mock
}

func (m *MockNoticeRepository) SaveNoticesInTx(ctx context.Context, tx pgx.Tx, notices []domain.BillNotice) error {
	args := m.Called(ctx, tx, notices)
	return args.Error(0)
}

func (m *MockNoticeRepository) FindNoticeByID(ctx context.Context, noticeID string) (*domain.BillNotice, error) {
	args := m.Called(ctx, noticeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BillNotice), args.Error(1)
}

func (m *MockNoticeRepository) ListNoticesByBill(ctx context.Context, billID string) ([]domain.BillNotice, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BillNotice), args.Error(1)
}

func (m *MockNoticeRepository) ListNoticesByUser(ctx context.Context, userID string) ([]domain.BillNotice, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BillNotice), args.Error(1)
}

func (m *MockNoticeRepository) UpdateDeliveryStatus(ctx context.Context, noticeID string, status domain.DeliveryStatus, lastError string, now time.Time) error {
	args := m.Called(ctx, noticeID, status, lastError, now)
	return args.Error(0)
}

func (m *MockNoticeRepository) MarkNoticePaid(ctx context.Context, noticeID string, paidAt time.Time, method string, note string) error {
	args := m.Called(ctx, noticeID, paidAt, method, note)
	return args.Error(0)
}

func (m *MockNoticeRepository) MarkActivityNoticesPaidInTx(ctx context.Context, tx pgx.Tx, activityID, userID string, paidAt time.Time) error {
	args := m.Called(ctx, tx, activityID, userID, paidAt)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, bill domain.Bill, activity domain.Activity, notices []domain.BillNotice) []domain.DispatchResult {
	args := m.Called(ctx, bill, activity, notices)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.DispatchResult)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Send(ctx context.Context, msg domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) ListMessagesByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, recipientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}
