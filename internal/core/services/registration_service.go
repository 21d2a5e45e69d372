package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/costshare_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/costshare_ledger/internal/core/ports/services"
	"github.com/SscSPs/costshare_ledger/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// RegistrationService drives registrations through their state machine and keeps
// the activity's cost-sharing set in step with the approved participants.
//
// Every mutation locks the activity row first, then the registration, then the
// account (through the ledger), so concurrent operations on one activity serialize.
type RegistrationService struct {
	BaseService
	txManager        portsrepo.TransactionManager
	activityRepo     portsrepo.ActivityRepositoryFacade
	registrationRepo portsrepo.RegistrationRepositoryFacade
	costSharingRepo  portsrepo.CostSharingRepository
	noticeRepo       portsrepo.NoticeRepository
	ledger           portssvc.LedgerWriterSvc
	recalculator     costSharingRecalculator
}

// RegistrationServiceOption configures a RegistrationService.
type RegistrationServiceOption func(*RegistrationService)

// WithRegistrationMetrics attaches Prometheus counters.
func WithRegistrationMetrics(m *metrics.Metrics) RegistrationServiceOption {
	return func(s *RegistrationService) {
		s.Metrics = m
	}
}

// WithRegistrationClock overrides time.Now, for tests.
func WithRegistrationClock(clock func() time.Time) RegistrationServiceOption {
	return func(s *RegistrationService) {
		s.Clock = clock
	}
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(repos portsrepo.RepositoryProvider, ledger portssvc.LedgerWriterSvc, opts ...RegistrationServiceOption) *RegistrationService {
	svc := &RegistrationService{
		txManager:        repos.TxManager,
		activityRepo:     repos.ActivityRepo,
		registrationRepo: repos.RegistrationRepo,
		costSharingRepo:  repos.CostSharingRepo,
		noticeRepo:       repos.NoticeRepo,
		ledger:           ledger,
	}
	svc.recalculator = newCostSharingRecalculator(&svc.BaseService, repos.ActivityRepo, repos.RegistrationRepo, repos.CostSharingRepo)
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

var _ portssvc.RegistrationSvcFacade = (*RegistrationService)(nil)

// lockRegistration reads the registration to learn its activity, then takes the
// activity lock followed by the registration lock.
func (s *RegistrationService) lockRegistration(ctx context.Context, tx pgx.Tx, registrationID string) (*domain.Activity, *domain.Registration, error) {
	peek, err := s.registrationRepo.FindRegistrationByID(ctx, registrationID)
	if err != nil {
		return nil, nil, err
	}
	activity, err := s.activityRepo.FindActivityForUpdate(ctx, tx, peek.ActivityID)
	if err != nil {
		return nil, nil, err
	}
	reg, err := s.registrationRepo.FindRegistrationForUpdate(ctx, tx, registrationID)
	if err != nil {
		return nil, nil, err
	}
	return activity, reg, nil
}

// Register signs userID up for an activity. Activities without approval place the
// registration straight into approved and recalculate shares in the same transaction.
func (s *RegistrationService) Register(ctx context.Context, activityID string, userID string, details domain.RegistrationDetails) (*domain.Registration, error) {
	var reg domain.Registration
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		now := s.Now()
		activity, err := s.activityRepo.FindActivityForUpdate(ctx, tx, activityID)
		if err != nil {
			return err
		}
		if err := activity.CheckRegistrationWindow(now); err != nil {
			return err
		}

		existing, err := s.registrationRepo.FindActiveRegistrationInTx(ctx, tx, activityID, userID)
		if err == nil {
			return fmt.Errorf("%w: registration %s is %s", apperrors.ErrAlreadyRegistered, existing.RegistrationID, existing.Status)
		}
		if !errors.Is(err, apperrors.ErrRegistrationNotFound) {
			return err
		}

		occupied, err := s.registrationRepo.CountOccupiedSeatsInTx(ctx, tx, activityID)
		if err != nil {
			return err
		}
		if !activity.HasCapacityFor(occupied) {
			return fmt.Errorf("%w: %d of %d seats taken", apperrors.ErrActivityFull, occupied, *activity.MaxParticipants)
		}

		reg = domain.Registration{
			RegistrationID:   uuid.NewString(),
			ActivityID:       activityID,
			UserID:           userID,
			Status:           domain.RegistrationPending,
			CostAmount:       decimal.Zero,
			PaidAmount:       decimal.Zero,
			PaymentStatus:    domain.PaymentUnpaid,
			CostSharingRatio: decimal.NewFromInt(1),
			Details:          details,
			AuditFields:      domain.NewAuditFields(userID, now),
		}
		if !activity.NeedApproval {
			reg.Status = domain.RegistrationApproved
			reg.ApprovalTime = &now
		}
		if err := s.registrationRepo.SaveRegistrationInTx(ctx, tx, reg); err != nil {
			return err
		}

		if reg.Status == domain.RegistrationApproved {
			recalc, err := s.recalculator.recalculateLocked(ctx, tx, *activity, now)
			if err != nil {
				return err
			}
			reg.CostAmount = recalc.amounts[reg.RegistrationID]
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to register", slog.String("activity_id", activityID), slog.String("user_id", userID))
		return nil, err
	}

	s.Metrics.RegistrationEvent("registered")
	if reg.Status == domain.RegistrationApproved {
		s.Metrics.RegistrationEvent("approved")
		s.Metrics.Recalculated()
	}
	s.LogInfo(ctx, "Registration created",
		slog.String("registration_id", reg.RegistrationID),
		slog.String("status", string(reg.Status)))
	return &reg, nil
}

// Approve approves or rejects a pending registration. Only the organizer may decide.
func (s *RegistrationService) Approve(ctx context.Context, registrationID string, approverID string, action domain.ApprovalAction, note string) (*domain.Registration, error) {
	if action == "" {
		action = domain.ActionApprove
	}
	if action != domain.ActionApprove && action != domain.ActionReject {
		return nil, fmt.Errorf("%w: unknown approval action %q", apperrors.ErrValidation, action)
	}

	var reg *domain.Registration
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		now := s.Now()
		activity, locked, err := s.lockRegistration(ctx, tx, registrationID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(activity.OrganizerID, approverID); err != nil {
			return err
		}
		if locked.Status != domain.RegistrationPending {
			return fmt.Errorf("%w: registration is %s", apperrors.ErrAlreadyProcessed, locked.Status)
		}

		target := domain.RegistrationRejected
		if action == domain.ActionApprove {
			target = domain.RegistrationApproved
			occupied, err := s.registrationRepo.CountOccupiedSeatsInTx(ctx, tx, activity.ActivityID)
			if err != nil {
				return err
			}
			if !activity.HasCapacityFor(occupied) {
				return fmt.Errorf("%w: %d of %d seats taken", apperrors.ErrActivityFull, occupied, *activity.MaxParticipants)
			}
		}
		if err := locked.TransitionTo(target, approverID, now); err != nil {
			return err
		}
		locked.ApprovedBy = &approverID
		locked.ApprovalTime = &now
		locked.ApprovalNote = note
		if err := s.registrationRepo.UpdateRegistrationInTx(ctx, tx, *locked); err != nil {
			return err
		}

		if target == domain.RegistrationApproved {
			recalc, err := s.recalculator.recalculateLocked(ctx, tx, *activity, now)
			if err != nil {
				return err
			}
			locked.CostAmount = recalc.amounts[locked.RegistrationID]
		}
		reg = locked
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to process registration approval", slog.String("registration_id", registrationID))
		return nil, err
	}

	s.Metrics.RegistrationEvent(string(reg.Status))
	if reg.Status == domain.RegistrationApproved {
		s.Metrics.Recalculated()
	}
	return reg, nil
}

// Cancel withdraws a pending or approved registration. A paid registration is only
// cancelled when opts.Refund asks for the paid amount to go back through the ledger.
func (s *RegistrationService) Cancel(ctx context.Context, registrationID string, userID string, opts domain.CancelOptions) (*domain.CancelResult, error) {
	result := &domain.CancelResult{RefundAmount: decimal.Zero}
	recalculated := false
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		now := s.Now()
		activity, reg, err := s.lockRegistration(ctx, tx, registrationID)
		if err != nil {
			return err
		}
		if reg.UserID != userID && activity.OrganizerID != userID {
			return fmt.Errorf("%w: only the registrant or the organizer may cancel", apperrors.ErrForbidden)
		}
		if !reg.Status.CanTransitionTo(domain.RegistrationCancelled) {
			return fmt.Errorf("%w: registration is %s", apperrors.ErrInvalidStateTransition, reg.Status)
		}
		if reg.PaymentStatus == domain.PaymentPaid && !opts.Refund {
			return fmt.Errorf("%w: registration is paid, cancel with refund", apperrors.ErrInvalidStateTransition)
		}

		wasApproved := reg.Status == domain.RegistrationApproved
		if err := reg.TransitionTo(domain.RegistrationCancelled, userID, now); err != nil {
			return err
		}

		if opts.Refund && reg.PaidAmount.IsPositive() {
			refund, err := s.refundLocked(ctx, tx, reg, userID, "Refund for cancelled registration")
			if err != nil {
				return err
			}
			result.RefundAmount = refund.Transaction.Amount
			result.TransactionID = &refund.TransactionID
		}
		if err := s.registrationRepo.UpdateRegistrationInTx(ctx, tx, *reg); err != nil {
			return err
		}

		if wasApproved {
			if _, err := s.recalculator.recalculateLocked(ctx, tx, *activity, now); err != nil {
				return err
			}
			recalculated = true
		}
		result.Registration = *reg
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to cancel registration", slog.String("registration_id", registrationID))
		return nil, err
	}

	s.Metrics.RegistrationEvent("cancelled")
	if recalculated {
		s.Metrics.Recalculated()
	}
	if result.TransactionID != nil {
		s.Metrics.LedgerTransaction(string(domain.TransactionRefund), result.RefundAmount.InexactFloat64())
	}
	return result, nil
}

// refundLocked returns reg's paid amount to the registrant inside tx and marks
// the registration refunded. The caller persists reg.
func (s *RegistrationService) refundLocked(ctx context.Context, tx pgx.Tx, reg *domain.Registration, actorID, description string) (*domain.LedgerResult, error) {
	regID := reg.RegistrationID
	res, err := s.ledger.ApplyTransactionInTx(ctx, tx, domain.LedgerEntry{
		UserID:      reg.UserID,
		Type:        domain.TransactionRefund,
		Amount:      reg.PaidAmount,
		Description: description,
		ReferenceID: &regID,
		ActorID:     actorID,
	})
	if err != nil {
		return nil, err
	}
	reg.PaidAmount = decimal.Zero
	reg.PaymentStatus = domain.PaymentRefunded
	return res, nil
}

// Complete marks an approved registration as attended.
func (s *RegistrationService) Complete(ctx context.Context, registrationID string, userID string) (*domain.Registration, error) {
	var reg *domain.Registration
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		activity, locked, err := s.lockRegistration(ctx, tx, registrationID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(activity.OrganizerID, userID); err != nil {
			return err
		}
		if err := locked.TransitionTo(domain.RegistrationCompleted, userID, s.Now()); err != nil {
			return err
		}
		if err := s.registrationRepo.UpdateRegistrationInTx(ctx, tx, *locked); err != nil {
			return err
		}
		reg = locked
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to complete registration", slog.String("registration_id", registrationID))
		return nil, err
	}
	s.Metrics.RegistrationEvent("completed")
	return reg, nil
}

// SetCostSharingRatio changes the weight a registration carries in the split.
func (s *RegistrationService) SetCostSharingRatio(ctx context.Context, registrationID string, userID string, ratio decimal.Decimal) (*domain.Registration, error) {
	if !ratio.IsPositive() {
		return nil, fmt.Errorf("%w: ratio must be greater than zero", apperrors.ErrValidation)
	}

	var reg *domain.Registration
	recalculated := false
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		now := s.Now()
		activity, locked, err := s.lockRegistration(ctx, tx, registrationID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(activity.OrganizerID, userID); err != nil {
			return err
		}
		if locked.Status != domain.RegistrationPending && locked.Status != domain.RegistrationApproved {
			return fmt.Errorf("%w: registration is %s", apperrors.ErrInvalidStateTransition, locked.Status)
		}

		locked.CostSharingRatio = ratio
		locked.Touch(userID, now)
		if err := s.registrationRepo.UpdateRegistrationInTx(ctx, tx, *locked); err != nil {
			return err
		}
		if locked.Status == domain.RegistrationApproved {
			recalc, err := s.recalculator.recalculateLocked(ctx, tx, *activity, now)
			if err != nil {
				return err
			}
			locked.CostAmount = recalc.amounts[locked.RegistrationID]
			recalculated = true
		}
		reg = locked
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to set cost-sharing ratio", slog.String("registration_id", registrationID))
		return nil, err
	}
	if recalculated {
		s.Metrics.Recalculated()
	}
	return reg, nil
}

// Pay debits the registrant's outstanding share and marks the registration paid.
func (s *RegistrationService) Pay(ctx context.Context, registrationID string, userID string) (*domain.PaymentResult, error) {
	var result *domain.PaymentResult
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		now := s.Now()
		activity, reg, err := s.lockRegistration(ctx, tx, registrationID)
		if err != nil {
			return err
		}
		if reg.UserID != userID {
			return fmt.Errorf("%w: only the registrant may pay", apperrors.ErrForbidden)
		}
		if err := activity.CheckPaymentWindow(now); err != nil {
			return err
		}
		if reg.Status != domain.RegistrationApproved {
			return fmt.Errorf("%w: registration is %s, only approved registrations can pay", apperrors.ErrInvalidStateTransition, reg.Status)
		}
		if reg.PaymentStatus == domain.PaymentPaid {
			return fmt.Errorf("%w: registration is already paid", apperrors.ErrAlreadyProcessed)
		}
		remaining := reg.RemainingAmount()
		if !remaining.IsPositive() {
			return fmt.Errorf("%w: nothing left to pay", apperrors.ErrValidation)
		}

		regID := reg.RegistrationID
		res, err := s.ledger.ApplyTransactionInTx(ctx, tx, domain.LedgerEntry{
			UserID:      userID,
			Type:        domain.TransactionExpense,
			Amount:      remaining,
			Description: fmt.Sprintf("Payment for %s", activity.Title),
			ReferenceID: &regID,
			ActorID:     userID,
		})
		if err != nil {
			return err
		}

		reg.PaidAmount = reg.CostAmount
		reg.PaymentStatus = domain.PaymentPaid
		reg.PaymentTime = &now
		reg.Touch(userID, now)
		if err := s.registrationRepo.UpdateRegistrationInTx(ctx, tx, *reg); err != nil {
			return err
		}
		if err := s.noticeRepo.MarkActivityNoticesPaidInTx(ctx, tx, activity.ActivityID, userID, now); err != nil {
			return err
		}

		result = &domain.PaymentResult{
			Registration:  *reg,
			TransactionID: res.TransactionID,
			PaidAmount:    remaining,
			NewBalance:    res.NewBalance,
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to pay registration", slog.String("registration_id", registrationID), slog.String("user_id", userID))
		return nil, err
	}

	s.Metrics.LedgerTransaction(string(domain.TransactionExpense), result.PaidAmount.InexactFloat64())
	s.Metrics.RegistrationEvent("paid")
	s.LogInfo(ctx, "Registration paid",
		slog.String("registration_id", registrationID),
		slog.String("transaction_id", result.TransactionID),
		slog.String("amount", result.PaidAmount.StringFixed(domain.CurrencyScale)))
	return result, nil
}

// Refund returns whatever the registrant paid. Only the organizer may refund.
func (s *RegistrationService) Refund(ctx context.Context, registrationID string, userID string) (*domain.RefundResult, error) {
	var result *domain.RefundResult
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		activity, reg, err := s.lockRegistration(ctx, tx, registrationID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(activity.OrganizerID, userID); err != nil {
			return err
		}
		if !reg.PaidAmount.IsPositive() {
			return fmt.Errorf("%w: registration has nothing to refund", apperrors.ErrInvalidStateTransition)
		}

		res, err := s.refundLocked(ctx, tx, reg, userID, fmt.Sprintf("Refund for %s", activity.Title))
		if err != nil {
			return err
		}
		reg.Touch(userID, s.Now())
		if err := s.registrationRepo.UpdateRegistrationInTx(ctx, tx, *reg); err != nil {
			return err
		}
		result = &domain.RefundResult{
			Registration:  *reg,
			TransactionID: res.TransactionID,
			RefundAmount:  res.Transaction.Amount,
			NewBalance:    res.NewBalance,
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to refund registration", slog.String("registration_id", registrationID))
		return nil, err
	}
	s.Metrics.LedgerTransaction(string(domain.TransactionRefund), result.RefundAmount.InexactFloat64())
	s.Metrics.RegistrationEvent("refunded")
	return result, nil
}

// Recalculate rebuilds the activity's cost-sharing set on the organizer's request.
func (s *RegistrationService) Recalculate(ctx context.Context, activityID string, userID string) ([]domain.CostSharingRecord, error) {
	var records []domain.CostSharingRecord
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		activity, err := s.activityRepo.FindActivityForUpdate(ctx, tx, activityID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(activity.OrganizerID, userID); err != nil {
			return err
		}
		recalc, err := s.recalculator.recalculateLocked(ctx, tx, *activity, s.Now())
		if err != nil {
			return err
		}
		records = recalc.records
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to recalculate cost sharing", slog.String("activity_id", activityID))
		return nil, err
	}
	s.Metrics.Recalculated()
	return records, nil
}

// GetRegistration returns a registration visible to its owner and the organizer.
func (s *RegistrationService) GetRegistration(ctx context.Context, registrationID string, userID string) (*domain.Registration, error) {
	reg, err := s.registrationRepo.FindRegistrationByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.UserID == userID {
		return reg, nil
	}
	activity, err := s.activityRepo.FindActivityByID(ctx, reg.ActivityID)
	if err != nil {
		return nil, err
	}
	if err := requireOrganizer(activity.OrganizerID, userID); err != nil {
		return nil, err
	}
	return reg, nil
}

// ListByActivity lists an activity's registrations, optionally by status.
func (s *RegistrationService) ListByActivity(ctx context.Context, activityID string, status *domain.RegistrationStatus) ([]domain.Registration, error) {
	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown registration status %q", apperrors.ErrValidation, *status)
	}
	if _, err := s.activityRepo.FindActivityByID(ctx, activityID); err != nil {
		return nil, err
	}
	return s.registrationRepo.ListRegistrationsByActivity(ctx, activityID, status)
}

// ListByUser lists the registrations a user made.
func (s *RegistrationService) ListByUser(ctx context.Context, userID string) ([]domain.Registration, error) {
	return s.registrationRepo.ListRegistrationsByUser(ctx, userID)
}
