package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// BillStatus is the lifecycle of a bill snapshot. Monotonic, pushed is terminal.
type BillStatus string

const (
	BillDraft  BillStatus = "draft"
	BillSaved  BillStatus = "saved"
	BillPushed BillStatus = "pushed"
)

var billTransitions = map[BillStatus]BillStatus{
	BillDraft: BillSaved,
	BillSaved: BillPushed,
}

// IsValid reports whether s is a known bill status.
func (s BillStatus) IsValid() bool {
	return s == BillDraft || s == BillSaved || s == BillPushed
}

// CanTransitionTo reports whether s -> next is legal.
func (s BillStatus) CanTransitionTo(next BillStatus) bool {
	allowed, ok := billTransitions[s]
	return ok && allowed == next
}

// BillDetail is one participant's line in a bill. The JSON shape is stable once pushed.
type BillDetail struct {
	UserID         string          `json:"user_id"`
	RegistrationID string          `json:"registration_id"`
	Amount         decimal.Decimal `json:"amount"`
	Ratio          decimal.Decimal `json:"ratio"`
}

// Bill is an organizer-authored snapshot of an activity's cost split.
type Bill struct {
	BillID             string           `json:"billID"`
	ActivityID         string           `json:"activityID"`
	CreatorID          string           `json:"creatorID"`
	TotalCost          decimal.Decimal  `json:"totalCost"` // Figure actually split: custom or base
	ExpenseTotalCost   decimal.Decimal  `json:"expenseTotalCost"`
	BaseTotalCost      decimal.Decimal  `json:"baseTotalCost"`
	UseCustomTotalCost bool             `json:"useCustomTotalCost"`
	CustomTotalCost    *decimal.Decimal `json:"customTotalCost"`
	CompanyCost        decimal.Decimal  `json:"companyCost"`
	ParticipantCount   int              `json:"participantCount"`
	TotalRatio         decimal.Decimal  `json:"totalRatio"`
	AverageCost        decimal.Decimal  `json:"averageCost"` // Share per unit of ratio
	Status             BillStatus       `json:"status"`
	Details            []BillDetail     `json:"billDetails"`
	PushedAt           *time.Time       `json:"pushedAt"`
	Version            int              `json:"version"`
	AuditFields
}

// TransitionTo moves the bill to next. Any move out of pushed fails with ErrAlreadyPushed.
func (b *Bill) TransitionTo(next BillStatus, actorID string, now time.Time) error {
	if b.Status == BillPushed {
		return fmt.Errorf("%w: bill %s was pushed at %s", apperrors.ErrAlreadyPushed, b.BillID, pushedAtString(b.PushedAt))
	}
	if !b.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: bill %s cannot move from %s to %s", apperrors.ErrInvalidStateTransition, b.BillID, b.Status, next)
	}
	b.Status = next
	if next == BillPushed {
		pushedAt := now
		b.PushedAt = &pushedAt
	}
	b.Touch(actorID, now)
	return nil
}

// EnsureMutable fails unless the bill is still a draft.
func (b Bill) EnsureMutable() error {
	switch b.Status {
	case BillDraft:
		return nil
	case BillPushed:
		return fmt.Errorf("%w: bill %s details are frozen", apperrors.ErrAlreadyPushed, b.BillID)
	default:
		return fmt.Errorf("%w: bill %s is %s, only drafts can change", apperrors.ErrInvalidStateTransition, b.BillID, b.Status)
	}
}

// Reconcile checks the stored figures add up.
// Detail amounts plus company cost must equal the total exactly, and average x ratio
// plus company cost must land within one cent per unit of ratio.
func (b Bill) Reconcile() error {
	if b.UseCustomTotalCost && (b.CustomTotalCost == nil || !b.CustomTotalCost.Equal(b.TotalCost)) {
		return fmt.Errorf("%w: custom total does not match total used", apperrors.ErrReconciliationMismatch)
	}
	if b.ParticipantCount != len(b.Details) {
		return fmt.Errorf("%w: participant count %d but %d bill details", apperrors.ErrReconciliationMismatch, b.ParticipantCount, len(b.Details))
	}

	sum := b.CompanyCost
	ratioSum := decimal.Zero
	for _, d := range b.Details {
		sum = sum.Add(d.Amount)
		ratioSum = ratioSum.Add(d.Ratio)
	}
	if !sum.Equal(b.TotalCost) {
		return fmt.Errorf("%w: shares sum to %s, total is %s", apperrors.ErrReconciliationMismatch, sum.StringFixed(CurrencyScale), b.TotalCost.StringFixed(CurrencyScale))
	}
	if !ratioSum.Equal(b.TotalRatio) {
		return fmt.Errorf("%w: ratios sum to %s, total ratio is %s", apperrors.ErrReconciliationMismatch, ratioSum.String(), b.TotalRatio.String())
	}

	units := b.TotalRatio.Ceil()
	if units.LessThan(decimal.NewFromInt(1)) {
		units = decimal.NewFromInt(1)
	}
	tolerance := decimal.New(1, -CurrencyScale).Mul(units)
	approx := b.AverageCost.Mul(b.TotalRatio).Add(b.CompanyCost)
	if approx.Sub(b.TotalCost).Abs().GreaterThan(tolerance) {
		return fmt.Errorf("%w: average %s x ratio %s + company %s is off from total %s by more than %s",
			apperrors.ErrReconciliationMismatch, b.AverageCost.String(), b.TotalRatio.String(), b.CompanyCost.String(), b.TotalCost.String(), tolerance.String())
	}
	return nil
}

func pushedAtString(t *time.Time) string {
	if t == nil {
		return "unknown time"
	}
	return t.Format(time.RFC3339)
}

// BillOverrides are organizer inputs for a draft.
type BillOverrides struct {
	CustomTotalCost *decimal.Decimal
	Ratios          map[string]decimal.Decimal // userID -> ratio, replaces the registration's ratio
}
