// Package dispatch delivers pushed bill notices to participants.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/costshare_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/costshare_ledger/internal/core/ports/services"
	"github.com/SscSPs/costshare_ledger/internal/middleware"
	"github.com/SscSPs/costshare_ledger/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultTimeout = 5 * time.Second
	messageType    = "bill"
)

var highPriorityAbove = decimal.NewFromInt(100)

// Messenger hands one message to a participant.
type Messenger interface {
	Send(ctx context.Context, msg domain.Message) error
}

// Dispatcher sends one message per bill notice and records each outcome on the notice.
type Dispatcher struct {
	messenger  Messenger
	noticeRepo portsrepo.NoticeRepository
	metrics    *metrics.Metrics
	timeout    time.Duration
	now        func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout bounds each delivery attempt.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(disp *Dispatcher) {
		disp.metrics = m
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(disp *Dispatcher) {
		disp.now = now
	}
}

// NewDispatcher creates a Dispatcher delivering through messenger.
func NewDispatcher(messenger Messenger, noticeRepo portsrepo.NoticeRepository, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		messenger:  messenger,
		noticeRepo: noticeRepo,
		timeout:    defaultTimeout,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ portssvc.BillDispatcher = (*Dispatcher)(nil)

// Dispatch delivers every notice and returns one result per notice, in order.
// A failed delivery marks the notice failed; it never affects the bill.
func (d *Dispatcher) Dispatch(ctx context.Context, bill domain.Bill, activity domain.Activity, notices []domain.BillNotice) []domain.DispatchResult {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("bill_id", bill.BillID))
	results := make([]domain.DispatchResult, 0, len(notices))

	for _, notice := range notices {
		result := domain.DispatchResult{
			NoticeID: notice.NoticeID,
			UserID:   notice.UserID,
			Amount:   notice.Amount,
			Status:   domain.DeliveryDelivered,
		}

		start := time.Now()
		err := d.deliver(ctx, d.buildMessage(bill, activity, notice))
		elapsed := time.Since(start).Seconds()

		if err != nil {
			result.Status = domain.DeliveryFailed
			result.Error = err.Error()
			logger.Warn("Bill notice delivery failed",
				slog.String("notice_id", notice.NoticeID),
				slog.String("user_id", notice.UserID),
				slog.String("error", err.Error()))
		}
		d.metrics.DispatchResult(string(result.Status), elapsed)

		if err := d.noticeRepo.UpdateDeliveryStatus(ctx, notice.NoticeID, result.Status, result.Error, d.now().UTC()); err != nil {
			logger.Error("Failed to record delivery status",
				slog.String("notice_id", notice.NoticeID),
				slog.String("error", err.Error()))
		}
		results = append(results, result)
	}

	logger.Info("Bill dispatched", slog.Int("notices", len(notices)), slog.Int("failed", countFailed(results)))
	return results
}

func (d *Dispatcher) deliver(ctx context.Context, msg domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.messenger.Send(ctx, msg); err != nil {
		return err
	}
	return ctx.Err()
}

func (d *Dispatcher) buildMessage(bill domain.Bill, activity domain.Activity, notice domain.BillNotice) domain.Message {
	priority := domain.PriorityNormal
	if notice.Amount.GreaterThan(highPriorityAbove) {
		priority = domain.PriorityHigh
	}

	billDate := bill.CreatedAt
	if bill.PushedAt != nil {
		billDate = *bill.PushedAt
	}

	content := fmt.Sprintf("Your share of %s is %s.", activity.Title, notice.Amount.StringFixed(domain.CurrencyScale))
	if notice.PaymentDeadline != nil {
		content += fmt.Sprintf(" Please pay by %s.", notice.PaymentDeadline.Format("2006-01-02"))
	}

	return domain.Message{
		MessageID:   uuid.NewString(),
		RecipientID: notice.UserID,
		SenderID:    bill.CreatorID,
		Title:       fmt.Sprintf("Bill for %s", activity.Title),
		Content:     content,
		Priority:    priority,
		Metadata: domain.BillMessageMetadata{
			Type:                messageType,
			BillID:              bill.BillID,
			NoticeID:            notice.NoticeID,
			ActivityID:          activity.ActivityID,
			ActivityTitle:       activity.Title,
			Amount:              notice.Amount,
			CostSharingRatio:    notice.CostSharingRatio,
			BillDate:            billDate,
			PaymentDeadline:     notice.PaymentDeadline,
			CostSharingRecordID: notice.CostSharingRecordID,
			PaymentStatus:       domain.PaymentUnpaid,
		},
		CreatedAt: d.now().UTC(),
	}
}

func countFailed(results []domain.DispatchResult) int {
	n := 0
	for _, r := range results {
		if r.Status != domain.DeliveryDelivered {
			n++
		}
	}
	return n
}
