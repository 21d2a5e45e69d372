package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/core/costsharing"
	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/costshare_ledger/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// recordNamespace scopes the name-based record IDs of cost-sharing rows.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("costshare_ledger/cost_sharing_records"))

// recalculation is the outcome of rebuilding an activity's cost-sharing set.
type recalculation struct {
	records   []domain.CostSharingRecord
	amounts   map[string]decimal.Decimal // registrationID -> cost_amount
	occupied  int
	perPerson decimal.Decimal
}

// costSharingRecalculator rebuilds the derived state of an activity: its
// cost-sharing records, the approved registrations' cost_amount, and the
// activity's participant count and per-person cost.
type costSharingRecalculator struct {
	base             *BaseService
	activityRepo     portsrepo.ActivityRepositoryFacade
	registrationRepo portsrepo.RegistrationRepositoryFacade
	costSharingRepo  portsrepo.CostSharingRepository
}

func newCostSharingRecalculator(
	base *BaseService,
	activityRepo portsrepo.ActivityRepositoryFacade,
	registrationRepo portsrepo.RegistrationRepositoryFacade,
	costSharingRepo portsrepo.CostSharingRepository,
) costSharingRecalculator {
	return costSharingRecalculator{
		base:             base,
		activityRepo:     activityRepo,
		registrationRepo: registrationRepo,
		costSharingRepo:  costSharingRepo,
	}
}

// recordID is stable for a given activity, cost type and registration, so
// rebuilding an unchanged activity yields the same records.
func recordID(activityID string, costType domain.CostType, registrationID string) string {
	return uuid.NewSHA1(recordNamespace, []byte(activityID+"/"+string(costType)+"/"+registrationID)).String()
}

// recalculateLocked rebuilds the cost-sharing set of an activity whose row the
// caller already holds locked in tx.
//
// Approved registrations are ordered by (created_at, registration_id); Allocate
// breaks remainder ties in favour of the earliest of them.
func (c costSharingRecalculator) recalculateLocked(ctx context.Context, tx pgx.Tx, activity domain.Activity, now time.Time) (*recalculation, error) {
	approved, err := c.registrationRepo.ListApprovedInTx(ctx, tx, activity.ActivityID)
	if err != nil {
		return nil, err
	}
	occupied, err := c.registrationRepo.CountOccupiedSeatsInTx(ctx, tx, activity.ActivityID)
	if err != nil {
		return nil, err
	}

	shares := costsharing.ComputeShares(configOf(activity), len(approved))

	weights := make([]decimal.Decimal, len(approved))
	for i, reg := range approved {
		weights[i] = reg.CostSharingRatio
	}
	allocated, err := costsharing.Allocate(shares.EmployeeTotalCost, weights)
	if err != nil {
		return nil, err
	}

	out := &recalculation{
		records:   make([]domain.CostSharingRecord, 0, len(approved)+1),
		amounts:   make(map[string]decimal.Decimal, len(approved)),
		occupied:  occupied,
		perPerson: shares.PerPersonAmount,
	}
	if shares.CompanyCost.IsPositive() {
		organizerID := activity.OrganizerID
		out.records = append(out.records, domain.CostSharingRecord{
			RecordID:     recordID(activity.ActivityID, domain.CostTypeOrganizer, ""),
			ActivityID:   activity.ActivityID,
			UserID:       &organizerID,
			CostType:     domain.CostTypeOrganizer,
			Amount:       shares.CompanyCost,
			Description:  "Company subsidy",
			CalculatedAt: now,
		})
	}
	for i, reg := range approved {
		regID, userID := reg.RegistrationID, reg.UserID
		out.records = append(out.records, domain.CostSharingRecord{
			RecordID:       recordID(activity.ActivityID, domain.CostTypeParticipant, regID),
			ActivityID:     activity.ActivityID,
			RegistrationID: &regID,
			UserID:         &userID,
			CostType:       domain.CostTypeParticipant,
			Amount:         allocated[i],
			Description:    fmt.Sprintf("Participant share (ratio %s)", reg.CostSharingRatio.String()),
			CalculatedAt:   now,
		})
		out.amounts[regID] = allocated[i]
	}

	if err := c.costSharingRepo.ReplaceRecordsInTx(ctx, tx, activity.ActivityID, out.records); err != nil {
		return nil, err
	}
	if len(out.amounts) > 0 {
		if err := c.registrationRepo.UpdateCostAmountsInTx(ctx, tx, out.amounts, now); err != nil {
			return nil, err
		}
	}
	if err := c.activityRepo.UpdateDerivedFieldsInTx(ctx, tx, activity.ActivityID, occupied, shares.PerPersonAmount, now); err != nil {
		return nil, err
	}

	c.base.LogDebug(ctx, "Cost sharing recalculated",
		slog.String("activity_id", activity.ActivityID),
		slog.Int("participants", len(approved)),
		slog.String("company_cost", shares.CompanyCost.StringFixed(domain.CurrencyScale)),
		slog.Bool("within_budget", shares.WithinBudget))
	return out, nil
}
