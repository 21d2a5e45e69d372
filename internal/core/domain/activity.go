package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ActivityStatus is the organizer-controlled lifecycle of an activity.
type ActivityStatus string

const (
	ActivityDraft            ActivityStatus = "draft"
	ActivityPublished        ActivityStatus = "published"
	ActivityRegistrationOpen ActivityStatus = "registration_open"
	ActivityOngoing          ActivityStatus = "ongoing"
	ActivityCompleted        ActivityStatus = "completed"
	ActivityCancelled        ActivityStatus = "cancelled"
)

// IsValid reports whether s is a known activity status.
func (s ActivityStatus) IsValid() bool {
	switch s {
	case ActivityDraft, ActivityPublished, ActivityRegistrationOpen, ActivityOngoing, ActivityCompleted, ActivityCancelled:
		return true
	}
	return false
}

// AcceptsRegistrations reports whether new sign-ups are allowed in this status.
func (s ActivityStatus) AcceptsRegistrations() bool {
	return s == ActivityPublished || s == ActivityRegistrationOpen
}

// ActivitySpecialType selects the cost-splitting rule.
type ActivitySpecialType string

const (
	SpecialTypeNormal       ActivitySpecialType = "normal"
	SpecialTypeDinnerParty  ActivitySpecialType = "dinner_party"
	SpecialTypeTeamBuilding ActivitySpecialType = "team_building"
	SpecialTypeCompanyEvent ActivitySpecialType = "company_event"
)

// IsValid reports whether t is a known special type.
func (t ActivitySpecialType) IsValid() bool {
	switch t {
	case SpecialTypeNormal, SpecialTypeDinnerParty, SpecialTypeTeamBuilding, SpecialTypeCompanyEvent:
		return true
	}
	return false
}

// Activity is an event whose cost may be shared among participants.
// CostPerPerson and CurrentParticipants are derived; they are rewritten under the activity row lock.
type Activity struct {
	ActivityID           string              `json:"activityID"`
	Title                string              `json:"title"`
	OrganizerID          string              `json:"organizerID"`
	Status               ActivityStatus      `json:"status"`
	SpecialType          ActivitySpecialType `json:"specialType"`
	NeedApproval         bool                `json:"needApproval"`
	TotalCost            decimal.Decimal     `json:"totalCost"`
	CompanyRatio         decimal.Decimal     `json:"companyRatio"`  // 0-100
	CompanyBudget        *decimal.Decimal    `json:"companyBudget"` // Nullable
	CostPerPerson        decimal.Decimal     `json:"costPerPerson"`
	MinParticipants      int                 `json:"minParticipants"`
	MaxParticipants      *int                `json:"maxParticipants"` // Nil means unlimited
	CurrentParticipants  int                 `json:"currentParticipants"`
	PaymentDeadline      *time.Time          `json:"paymentDeadline"`
	RegistrationDeadline *time.Time          `json:"registrationDeadline"`
	CostDescription      string              `json:"costDescription"`
	AuditFields
}

// IsBudgetCapped reports whether the company share is capped by CompanyBudget.
func (a Activity) IsBudgetCapped() bool {
	return a.SpecialType == SpecialTypeDinnerParty && a.CompanyBudget != nil
}

// CheckRegistrationWindow fails with ErrActivityNotAcceptingRegistrations when sign-ups are closed at now.
func (a Activity) CheckRegistrationWindow(now time.Time) error {
	if !a.Status.AcceptsRegistrations() {
		return fmt.Errorf("%w: activity status is %s", apperrors.ErrActivityNotAcceptingRegistrations, a.Status)
	}
	if a.RegistrationDeadline != nil && now.After(*a.RegistrationDeadline) {
		return fmt.Errorf("%w: registration deadline has passed", apperrors.ErrActivityNotAcceptingRegistrations)
	}
	if a.PaymentDeadline != nil && now.After(*a.PaymentDeadline) {
		return fmt.Errorf("%w: payment deadline has passed", apperrors.ErrActivityNotAcceptingRegistrations)
	}
	return nil
}

// CheckPaymentWindow fails when the payment deadline has passed at now.
func (a Activity) CheckPaymentWindow(now time.Time) error {
	if a.PaymentDeadline != nil && now.After(*a.PaymentDeadline) {
		return fmt.Errorf("%w: payment deadline has passed", apperrors.ErrActivityNotAcceptingRegistrations)
	}
	return nil
}

// HasCapacityFor reports whether one more participant fits given the occupied seat count.
func (a Activity) HasCapacityFor(occupied int) bool {
	return a.MaxParticipants == nil || occupied < *a.MaxParticipants
}

// ActivityExpense is a recorded cost item. Their sum feeds a bill's expense total.
type ActivityExpense struct {
	ExpenseID   string          `json:"expenseID"`
	ActivityID  string          `json:"activityID"`
	Item        string          `json:"item"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expenseDate"`
	PayerID     *string         `json:"payerID"`
	Description string          `json:"description"`
	AuditFields
}
