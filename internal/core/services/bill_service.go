package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/SscSPs/costshare_ledger/internal/core/costsharing"
	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/costshare_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/costshare_ledger/internal/core/ports/services"
	"github.com/SscSPs/costshare_ledger/internal/dto"
	"github.com/SscSPs/costshare_ledger/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	defaultNoticePaymentMethod = "manual"
	defaultInboxLimit          = 50
	maxInboxLimit              = 200
)

// BillService drafts, saves and pushes the bill of an activity.
type BillService struct {
	BaseService
	txManager        portsrepo.TransactionManager
	activityRepo     portsrepo.ActivityRepositoryFacade
	registrationRepo portsrepo.RegistrationRepositoryFacade
	costSharingRepo  portsrepo.CostSharingRepository
	billRepo         portsrepo.BillRepositoryFacade
	noticeRepo       portsrepo.NoticeRepository
	messageRepo      portsrepo.MessageRepository
	dispatcher       portssvc.BillDispatcher
}

// BillServiceOption configures a BillService.
type BillServiceOption func(*BillService)

// WithBillMetrics attaches Prometheus counters.
func WithBillMetrics(m *metrics.Metrics) BillServiceOption {
	return func(s *BillService) {
		s.Metrics = m
	}
}

// WithBillClock overrides time.Now, for tests.
func WithBillClock(clock func() time.Time) BillServiceOption {
	return func(s *BillService) {
		s.Clock = clock
	}
}

// NewBillService creates a new BillService.
func NewBillService(repos portsrepo.RepositoryProvider, dispatcher portssvc.BillDispatcher, opts ...BillServiceOption) *BillService {
	svc := &BillService{
		txManager:        repos.TxManager,
		activityRepo:     repos.ActivityRepo,
		registrationRepo: repos.RegistrationRepo,
		costSharingRepo:  repos.CostSharingRepo,
		billRepo:         repos.BillRepo,
		noticeRepo:       repos.NoticeRepo,
		messageRepo:      repos.MessageRepo,
		dispatcher:       dispatcher,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

var _ portssvc.BillSvcFacade = (*BillService)(nil)

// CreateOrUpdateDraft computes the activity's bill from its approved registrations
// and writes it into the single draft of the activity.
//
// Shares are allocated in registration order; leftover cents go by largest remainder,
// earliest registrant first on ties, so the details add up to the employee total exactly.
func (s *BillService) CreateOrUpdateDraft(ctx context.Context, activityID string, creatorID string, overrides domain.BillOverrides) (*domain.Bill, error) {
	if overrides.CustomTotalCost != nil {
		if overrides.CustomTotalCost.IsNegative() || !overrides.CustomTotalCost.Equal(overrides.CustomTotalCost.Round(domain.CurrencyScale)) {
			return nil, fmt.Errorf("%w: custom total must be a non-negative amount with at most two decimals", apperrors.ErrValidation)
		}
	}

	var bill domain.Bill
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		now := s.Now()
		activity, err := s.activityRepo.FindActivityForUpdate(ctx, tx, activityID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(activity.OrganizerID, creatorID); err != nil {
			return err
		}

		expenseTotal, err := s.activityRepo.SumExpensesInTx(ctx, tx, activityID)
		if err != nil {
			return err
		}
		baseTotal := expenseTotal
		if activity.TotalCost.IsPositive() {
			baseTotal = activity.TotalCost
		}
		total := baseTotal
		if overrides.CustomTotalCost != nil {
			total = *overrides.CustomTotalCost
		}

		approved, err := s.registrationRepo.ListApprovedInTx(ctx, tx, activityID)
		if err != nil {
			return err
		}
		if len(approved) == 0 {
			return fmt.Errorf("%w: activity has no approved participants to bill", apperrors.ErrValidation)
		}

		weights, err := applyRatioOverrides(approved, overrides.Ratios)
		if err != nil {
			return err
		}

		cfg := configOf(*activity)
		cfg.TotalCost = total
		if err := costsharing.ValidateConfig(cfg); err != nil {
			return err
		}
		shares := costsharing.ComputeShares(cfg, len(approved))
		amounts, err := costsharing.Allocate(shares.EmployeeTotalCost, weights)
		if err != nil {
			return err
		}
		totalRatio := costsharing.SumWeights(weights)

		details := make([]domain.BillDetail, len(approved))
		for i, reg := range approved {
			details[i] = domain.BillDetail{
				UserID:         reg.UserID,
				RegistrationID: reg.RegistrationID,
				Amount:         amounts[i],
				Ratio:          weights[i],
			}
		}

		existing, err := s.billRepo.FindDraftForUpdate(ctx, tx, activityID)
		switch {
		case err == nil:
			bill = *existing
			if err := bill.EnsureMutable(); err != nil {
				return err
			}
			bill.Touch(creatorID, now)
		case errors.Is(err, apperrors.ErrNotFound):
			bill = domain.Bill{
				BillID:      uuid.NewString(),
				ActivityID:  activityID,
				CreatorID:   creatorID,
				Status:      domain.BillDraft,
				Version:     1,
				AuditFields: domain.NewAuditFields(creatorID, now),
			}
		default:
			return err
		}

		bill.TotalCost = total
		bill.ExpenseTotalCost = expenseTotal
		bill.BaseTotalCost = baseTotal
		bill.UseCustomTotalCost = overrides.CustomTotalCost != nil
		bill.CustomTotalCost = overrides.CustomTotalCost
		bill.CompanyCost = shares.CompanyCost
		bill.ParticipantCount = len(approved)
		bill.TotalRatio = totalRatio
		bill.AverageCost = shares.EmployeeTotalCost.DivRound(totalRatio, domain.CurrencyScale)
		bill.Details = details

		if err := bill.Reconcile(); err != nil {
			return err
		}
		if existing == nil {
			return s.billRepo.SaveBillInTx(ctx, tx, bill)
		}
		if err := s.billRepo.UpdateBillInTx(ctx, tx, bill); err != nil {
			return err
		}
		bill.Version++
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create or update bill draft", slog.String("activity_id", activityID))
		return nil, err
	}

	s.Metrics.BillTransition(string(domain.BillDraft))
	s.LogInfo(ctx, "Bill draft written",
		slog.String("bill_id", bill.BillID),
		slog.Int("participants", bill.ParticipantCount),
		slog.String("total_cost", bill.TotalCost.StringFixed(domain.CurrencyScale)))
	return &bill, nil
}

// applyRatioOverrides returns the split weight of each approved registration.
// Every override must name an approved participant.
func applyRatioOverrides(approved []domain.Registration, ratios map[string]decimal.Decimal) ([]decimal.Decimal, error) {
	weights := make([]decimal.Decimal, len(approved))
	seen := make(map[string]bool, len(approved))
	for i, reg := range approved {
		weights[i] = reg.CostSharingRatio
		if r, ok := ratios[reg.UserID]; ok {
			weights[i] = r
		}
		if !weights[i].IsPositive() {
			return nil, fmt.Errorf("%w: ratio for user %s must be greater than zero", apperrors.ErrValidation, reg.UserID)
		}
		seen[reg.UserID] = true
	}
	for userID := range ratios {
		if !seen[userID] {
			return nil, fmt.Errorf("%w: user %s is not an approved participant", apperrors.ErrValidation, userID)
		}
	}
	return weights, nil
}

// authorizeBill loads the bill's activity and checks the caller organizes it.
func (s *BillService) authorizeBill(ctx context.Context, bill *domain.Bill, userID string) (*domain.Activity, error) {
	activity, err := s.activityRepo.FindActivityByID(ctx, bill.ActivityID)
	if err != nil {
		return nil, err
	}
	if err := requireOrganizer(activity.OrganizerID, userID); err != nil {
		return nil, err
	}
	return activity, nil
}

// SaveBill freezes a reconciled draft.
func (s *BillService) SaveBill(ctx context.Context, billID string, userID string) (*domain.Bill, error) {
	var bill *domain.Bill
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		locked, err := s.billRepo.FindBillForUpdate(ctx, tx, billID)
		if err != nil {
			return err
		}
		if _, err := s.authorizeBill(ctx, locked, userID); err != nil {
			return err
		}
		if err := locked.TransitionTo(domain.BillSaved, userID, s.Now()); err != nil {
			return err
		}
		if err := locked.Reconcile(); err != nil {
			return err
		}
		if err := s.billRepo.UpdateBillInTx(ctx, tx, *locked); err != nil {
			return err
		}
		locked.Version++
		bill = locked
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to save bill", slog.String("bill_id", billID))
		return nil, err
	}
	s.Metrics.BillTransition(string(domain.BillSaved))
	return bill, nil
}

// PushBill commits the pushed status and the notice outbox together, then hands
// the notices to the dispatcher. Dispatch results never undo the push.
func (s *BillService) PushBill(ctx context.Context, billID string, userID string) (*domain.Bill, []domain.DispatchResult, error) {
	var (
		bill     *domain.Bill
		activity *domain.Activity
		notices  []domain.BillNotice
	)
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		now := s.Now()
		locked, err := s.billRepo.FindBillForUpdate(ctx, tx, billID)
		if err != nil {
			return err
		}
		activity, err = s.authorizeBill(ctx, locked, userID)
		if err != nil {
			return err
		}
		if err := locked.TransitionTo(domain.BillPushed, userID, now); err != nil {
			return err
		}
		if err := locked.Reconcile(); err != nil {
			return err
		}
		if err := s.billRepo.UpdateBillInTx(ctx, tx, *locked); err != nil {
			return err
		}
		locked.Version++

		records, err := s.costSharingRepo.ListRecordsByActivityInTx(ctx, tx, locked.ActivityID)
		if err != nil {
			return err
		}
		recordByRegistration := make(map[string]string, len(records))
		for _, r := range records {
			if r.RegistrationID != nil {
				recordByRegistration[*r.RegistrationID] = r.RecordID
			}
		}

		notices = make([]domain.BillNotice, len(locked.Details))
		for i, d := range locked.Details {
			notices[i] = domain.BillNotice{
				NoticeID:         uuid.NewString(),
				BillID:           locked.BillID,
				ActivityID:       locked.ActivityID,
				UserID:           d.UserID,
				Amount:           d.Amount,
				CostSharingRatio: d.Ratio,
				PaymentDeadline:  activity.PaymentDeadline,
				PaymentStatus:    domain.PaymentUnpaid,
				DeliveryStatus:   domain.DeliveryPending,
				CreatedAt:        now,
			}
			if recordID, ok := recordByRegistration[d.RegistrationID]; ok {
				notices[i].CostSharingRecordID = &recordID
			}
		}
		if err := s.noticeRepo.SaveNoticesInTx(ctx, tx, notices); err != nil {
			return err
		}
		bill = locked
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to push bill", slog.String("bill_id", billID))
		return nil, nil, err
	}

	s.Metrics.BillTransition(string(domain.BillPushed))
	s.LogInfo(ctx, "Bill pushed", slog.String("bill_id", billID), slog.Int("notices", len(notices)))

	results := s.dispatcher.Dispatch(ctx, *bill, *activity, notices)
	return bill, results, nil
}

// RetryDispatch re-sends the notices of a pushed bill that are not delivered yet.
func (s *BillService) RetryDispatch(ctx context.Context, billID string, userID string) ([]domain.DispatchResult, error) {
	bill, err := s.billRepo.FindBillByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	activity, err := s.authorizeBill(ctx, bill, userID)
	if err != nil {
		return nil, err
	}
	if bill.Status != domain.BillPushed {
		return nil, fmt.Errorf("%w: bill is %s, only pushed bills are dispatched", apperrors.ErrInvalidStateTransition, bill.Status)
	}

	notices, err := s.noticeRepo.ListNoticesByBill(ctx, billID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list bill notices", slog.String("bill_id", billID))
		return nil, err
	}
	undelivered := make([]domain.BillNotice, 0, len(notices))
	for _, n := range notices {
		if n.DeliveryStatus != domain.DeliveryDelivered {
			undelivered = append(undelivered, n)
		}
	}
	if len(undelivered) == 0 {
		return []domain.DispatchResult{}, nil
	}
	return s.dispatcher.Dispatch(ctx, *bill, *activity, undelivered), nil
}

// MarkNoticePaid records an out-of-band payment against one notice.
func (s *BillService) MarkNoticePaid(ctx context.Context, noticeID string, userID string, req dto.MarkNoticePaidRequest) (*domain.BillNotice, error) {
	notice, err := s.noticeRepo.FindNoticeByID(ctx, noticeID)
	if err != nil {
		return nil, err
	}
	activity, err := s.activityRepo.FindActivityByID(ctx, notice.ActivityID)
	if err != nil {
		return nil, err
	}
	if err := requireOrganizer(activity.OrganizerID, userID); err != nil {
		return nil, err
	}
	if notice.PaymentStatus == domain.PaymentPaid {
		return nil, fmt.Errorf("%w: notice %s is already paid", apperrors.ErrAlreadyProcessed, noticeID)
	}

	method := req.PaymentMethod
	if method == "" {
		method = defaultNoticePaymentMethod
	}
	now := s.Now()
	if err := s.noticeRepo.MarkNoticePaid(ctx, noticeID, now, method, req.PaymentNote); err != nil {
		s.LogError(ctx, err, "Failed to mark notice paid", slog.String("notice_id", noticeID))
		return nil, err
	}
	notice.PaymentStatus = domain.PaymentPaid
	notice.PaymentTime = &now
	notice.PaymentMethod = method
	notice.PaymentNote = req.PaymentNote
	return notice, nil
}

// GetBill returns one bill.
func (s *BillService) GetBill(ctx context.Context, billID string) (*domain.Bill, error) {
	return s.billRepo.FindBillByID(ctx, billID)
}

// GetLatestBill returns the newest bill of an activity.
func (s *BillService) GetLatestBill(ctx context.Context, activityID string) (*domain.Bill, error) {
	return s.billRepo.FindLatestBillByActivity(ctx, activityID)
}

// ListBills pages an activity's bills, newest first.
func (s *BillService) ListBills(ctx context.Context, activityID string, params dto.ListBillsParams) ([]domain.Bill, error) {
	var status *domain.BillStatus
	if params.Status != "" {
		st := domain.BillStatus(params.Status)
		if !st.IsValid() {
			return nil, fmt.Errorf("%w: unknown bill status %q", apperrors.ErrValidation, params.Status)
		}
		status = &st
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	return s.billRepo.ListBillsByActivity(ctx, activityID, status, limit, params.Offset)
}

// ListNotices returns a bill's notices. Participants only see their own.
func (s *BillService) ListNotices(ctx context.Context, billID string, userID string) ([]domain.BillNotice, error) {
	bill, err := s.billRepo.FindBillByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	activity, err := s.activityRepo.FindActivityByID(ctx, bill.ActivityID)
	if err != nil {
		return nil, err
	}
	notices, err := s.noticeRepo.ListNoticesByBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if activity.OrganizerID == userID {
		return notices, nil
	}
	own := make([]domain.BillNotice, 0, 1)
	for _, n := range notices {
		if n.UserID == userID {
			own = append(own, n)
		}
	}
	return own, nil
}

// ListUserNotices returns the bill history of a user.
func (s *BillService) ListUserNotices(ctx context.Context, userID string) ([]domain.BillNotice, error) {
	return s.noticeRepo.ListNoticesByUser(ctx, userID)
}

// ListUserMessages returns the newest messages delivered to the user's inbox.
func (s *BillService) ListUserMessages(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = defaultInboxLimit
	}
	if limit > maxInboxLimit {
		limit = maxInboxLimit
	}
	return s.messageRepo.ListMessagesByRecipient(ctx, userID, limit)
}
