package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/SscSPs/costshare_ledger/internal/core/costsharing"
	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/costshare_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/costshare_ledger/internal/core/ports/services"
	"github.com/SscSPs/costshare_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ActivityService manages activities, their cost configuration and expenses.
type ActivityService struct {
	BaseService
	txManager        portsrepo.TransactionManager
	activityRepo     portsrepo.ActivityRepositoryFacade
	registrationRepo portsrepo.RegistrationRepositoryFacade
	costSharingRepo  portsrepo.CostSharingRepository
	recalculator     costSharingRecalculator
}

// ActivityServiceOption configures an ActivityService.
type ActivityServiceOption func(*ActivityService)

// WithActivityClock overrides time.Now, for tests.
func WithActivityClock(clock func() time.Time) ActivityServiceOption {
	return func(s *ActivityService) {
		s.Clock = clock
	}
}

// NewActivityService creates a new ActivityService.
func NewActivityService(
	txManager portsrepo.TransactionManager,
	activityRepo portsrepo.ActivityRepositoryFacade,
	registrationRepo portsrepo.RegistrationRepositoryFacade,
	costSharingRepo portsrepo.CostSharingRepository,
	opts ...ActivityServiceOption,
) *ActivityService {
	svc := &ActivityService{
		txManager:        txManager,
		activityRepo:     activityRepo,
		registrationRepo: registrationRepo,
		costSharingRepo:  costSharingRepo,
	}
	svc.recalculator = newCostSharingRecalculator(&svc.BaseService, activityRepo, registrationRepo, costSharingRepo)
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

var _ portssvc.ActivitySvcFacade = (*ActivityService)(nil)

func configOf(a domain.Activity) costsharing.Config {
	return costsharing.Config{
		TotalCost:     a.TotalCost,
		CompanyRatio:  a.CompanyRatio,
		CompanyBudget: a.CompanyBudget,
		BudgetCapped:  a.IsBudgetCapped(),
	}
}

func validateParticipantLimits(minP int, maxP *int) error {
	if minP < 0 {
		return fmt.Errorf("%w: minimum participants cannot be negative", apperrors.ErrValidation)
	}
	if maxP != nil && (*maxP < 1 || *maxP < minP) {
		return fmt.Errorf("%w: maximum participants must be at least 1 and not below the minimum", apperrors.ErrValidation)
	}
	return nil
}

// CreateActivity stores a new activity organized by organizerID.
func (s *ActivityService) CreateActivity(ctx context.Context, req dto.CreateActivityRequest, organizerID string) (*domain.Activity, error) {
	now := s.Now()
	activity := domain.Activity{
		ActivityID:           uuid.NewString(),
		Title:                req.Title,
		OrganizerID:          organizerID,
		Status:               req.Status,
		SpecialType:          req.SpecialType,
		NeedApproval:         req.NeedApproval,
		TotalCost:            req.TotalCost,
		CompanyRatio:         req.CompanyRatio,
		CompanyBudget:        req.CompanyBudget,
		CostPerPerson:        decimal.Zero,
		MinParticipants:      req.MinParticipants,
		MaxParticipants:      req.MaxParticipants,
		PaymentDeadline:      req.PaymentDeadline,
		RegistrationDeadline: req.RegistrationDeadline,
		CostDescription:      req.CostDescription,
		AuditFields:          domain.NewAuditFields(organizerID, now),
	}
	if activity.Status == "" {
		activity.Status = domain.ActivityDraft
	}
	if activity.SpecialType == "" {
		activity.SpecialType = domain.SpecialTypeNormal
	}
	if !activity.Status.IsValid() || !activity.SpecialType.IsValid() {
		return nil, fmt.Errorf("%w: unknown status or special type", apperrors.ErrValidation)
	}
	if err := costsharing.ValidateConfig(configOf(activity)); err != nil {
		return nil, err
	}
	if err := validateParticipantLimits(activity.MinParticipants, activity.MaxParticipants); err != nil {
		return nil, err
	}

	if err := s.activityRepo.SaveActivity(ctx, activity); err != nil {
		s.LogError(ctx, err, "Failed to create activity", slog.String("organizer_id", organizerID))
		return nil, err
	}
	s.LogInfo(ctx, "Activity created", slog.String("activity_id", activity.ActivityID))
	return &activity, nil
}

// GetActivity returns one activity.
func (s *ActivityService) GetActivity(ctx context.Context, activityID string) (*domain.Activity, error) {
	return s.activityRepo.FindActivityByID(ctx, activityID)
}

// UpdateCostConfig replaces the cost configuration while no registration occupies a seat,
// then rebuilds the derived cost-sharing state against the new configuration.
func (s *ActivityService) UpdateCostConfig(ctx context.Context, activityID string, req dto.UpdateCostConfigRequest, userID string) (*domain.Activity, error) {
	var updated *domain.Activity
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		activity, err := s.activityRepo.FindActivityForUpdate(ctx, tx, activityID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(activity.OrganizerID, userID); err != nil {
			return err
		}

		occupied, err := s.registrationRepo.CountOccupiedSeatsInTx(ctx, tx, activityID)
		if err != nil {
			return err
		}
		if occupied > 0 {
			return fmt.Errorf("%w: %d participants already approved", apperrors.ErrCostConfigLocked, occupied)
		}

		if req.SpecialType != "" {
			activity.SpecialType = req.SpecialType
		}
		activity.TotalCost = req.TotalCost
		activity.CompanyRatio = req.CompanyRatio
		activity.CompanyBudget = req.CompanyBudget
		activity.MaxParticipants = req.MaxParticipants
		activity.PaymentDeadline = req.PaymentDeadline
		if req.CostDescription != nil {
			activity.CostDescription = *req.CostDescription
		}
		if !activity.SpecialType.IsValid() {
			return fmt.Errorf("%w: unknown special type %q", apperrors.ErrValidation, activity.SpecialType)
		}
		if err := costsharing.ValidateConfig(configOf(*activity)); err != nil {
			return err
		}
		if err := validateParticipantLimits(activity.MinParticipants, activity.MaxParticipants); err != nil {
			return err
		}
		now := s.Now()
		activity.Touch(userID, now)

		if err := s.activityRepo.UpdateCostConfigInTx(ctx, tx, *activity); err != nil {
			return err
		}
		recalc, err := s.recalculator.recalculateLocked(ctx, tx, *activity, now)
		if err != nil {
			return err
		}
		activity.CurrentParticipants = recalc.occupied
		activity.CostPerPerson = recalc.perPerson
		updated = activity
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update cost config", slog.String("activity_id", activityID))
		return nil, err
	}
	return updated, nil
}

// UpdateStatus moves the activity through its organizer-controlled lifecycle.
// Completed and cancelled activities are final.
func (s *ActivityService) UpdateStatus(ctx context.Context, activityID string, status domain.ActivityStatus, userID string) (*domain.Activity, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown activity status %q", apperrors.ErrValidation, status)
	}
	var updated *domain.Activity
	err := s.withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		activity, err := s.activityRepo.FindActivityForUpdate(ctx, tx, activityID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(activity.OrganizerID, userID); err != nil {
			return err
		}
		if activity.Status == domain.ActivityCompleted || activity.Status == domain.ActivityCancelled {
			return fmt.Errorf("%w: activity is already %s", apperrors.ErrInvalidStateTransition, activity.Status)
		}

		now := s.Now()
		if err := s.activityRepo.UpdateActivityStatusInTx(ctx, tx, activityID, status, userID, now); err != nil {
			return err
		}
		activity.Status = status
		activity.Touch(userID, now)
		updated = activity
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update activity status", slog.String("activity_id", activityID))
		return nil, err
	}
	return updated, nil
}

// RecordExpense adds an expense item to the activity.
func (s *ActivityService) RecordExpense(ctx context.Context, activityID string, req dto.RecordExpenseRequest, userID string) (*domain.ActivityExpense, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	activity, err := s.activityRepo.FindActivityByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if err := requireOrganizer(activity.OrganizerID, userID); err != nil {
		return nil, err
	}

	now := s.Now()
	expense := domain.ActivityExpense{
		ExpenseID:   uuid.NewString(),
		ActivityID:  activityID,
		Item:        req.Item,
		Amount:      req.Amount,
		ExpenseDate: now,
		PayerID:     req.PayerID,
		Description: req.Description,
		AuditFields: domain.NewAuditFields(userID, now),
	}
	if req.ExpenseDate != nil {
		expense.ExpenseDate = req.ExpenseDate.UTC()
	}

	if err := s.activityRepo.SaveExpense(ctx, expense); err != nil {
		s.LogError(ctx, err, "Failed to record expense", slog.String("activity_id", activityID))
		return nil, err
	}
	return &expense, nil
}

// ListExpenses returns the activity's expenses, oldest first.
func (s *ActivityService) ListExpenses(ctx context.Context, activityID string) ([]domain.ActivityExpense, error) {
	if _, err := s.activityRepo.FindActivityByID(ctx, activityID); err != nil {
		return nil, err
	}
	return s.activityRepo.ListExpensesByActivity(ctx, activityID)
}

// GetCostSharing returns the activity and its current cost-sharing records.
func (s *ActivityService) GetCostSharing(ctx context.Context, activityID string) (*domain.Activity, []domain.CostSharingRecord, error) {
	activity, err := s.activityRepo.FindActivityByID(ctx, activityID)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.costSharingRepo.ListRecordsByActivity(ctx, activityID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list cost-sharing records", slog.String("activity_id", activityID))
		return nil, nil, err
	}
	return activity, records, nil
}
