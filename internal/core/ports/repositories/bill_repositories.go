package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// BillReader defines read operations for bills
type BillReader interface {
	FindBillByID(ctx context.Context, billID string) (*domain.Bill, error)

	// FindLatestBillByActivity returns the most recently created bill of an activity.
	FindLatestBillByActivity(ctx context.Context, activityID string) (*domain.Bill, error)

	// ListBillsByActivity pages an activity's bills, newest first, optionally filtered by status.
	ListBillsByActivity(ctx context.Context, activityID string, status *domain.BillStatus, limit int, offset int) ([]domain.Bill, error)
}

// BillTransactionSupport defines locked bill operations.
type BillTransactionSupport interface {
	// FindDraftForUpdate locks the activity's draft bill, or returns ErrNotFound.
	FindDraftForUpdate(ctx context.Context, tx pgx.Tx, activityID string) (*domain.Bill, error)

	// FindBillForUpdate locks a bill row.
	FindBillForUpdate(ctx context.Context, tx pgx.Tx, billID string) (*domain.Bill, error)

	// SaveBillInTx inserts a new bill.
	SaveBillInTx(ctx context.Context, tx pgx.Tx, bill domain.Bill) error

	// UpdateBillInTx writes a bill if its stored version still equals bill.Version and bumps the version.
	UpdateBillInTx(ctx context.Context, tx pgx.Tx, bill domain.Bill) error
}

// BillRepositoryFacade combines all bill repository interfaces
type BillRepositoryFacade interface {
	BillReader
	BillTransactionSupport
}

// NoticeRepository stores bill notices, the dispatch outbox.
type NoticeRepository interface {
	// SaveNoticesInTx inserts the notices of a bill being pushed.
	SaveNoticesInTx(ctx context.Context, tx pgx.Tx, notices []domain.BillNotice) error

	FindNoticeByID(ctx context.Context, noticeID string) (*domain.BillNotice, error)
	ListNoticesByBill(ctx context.Context, billID string) ([]domain.BillNotice, error)
	ListNoticesByUser(ctx context.Context, userID string) ([]domain.BillNotice, error)

	// UpdateDeliveryStatus records one delivery attempt.
	UpdateDeliveryStatus(ctx context.Context, noticeID string, status domain.DeliveryStatus, lastError string, now time.Time) error

	// MarkNoticePaid records payment bookkeeping on one notice.
	MarkNoticePaid(ctx context.Context, noticeID string, paidAt time.Time, method string, note string) error

	// MarkActivityNoticesPaidInTx marks a user's unpaid notices of an activity as paid.
	MarkActivityNoticesPaidInTx(ctx context.Context, tx pgx.Tx, activityID, userID string, paidAt time.Time) error
}

// MessageRepository persists user-facing messages. It is the default delivery
// target of bill dispatch.
type MessageRepository interface {
	// Send stores msg in the recipient's inbox.
	Send(ctx context.Context, msg domain.Message) error

	// ListMessagesByRecipient returns a user's messages, newest first.
	ListMessagesByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Message, error)
}
