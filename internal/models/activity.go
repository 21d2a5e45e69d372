package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Activity is one row of the activities table.
type Activity struct {
	ActivityID           string           `db:"activity_id"`
	Title                string           `db:"title"`
	OrganizerID          string           `db:"organizer_id"`
	Status               string           `db:"status"`
	SpecialType          string           `db:"special_type"`
	NeedApproval         bool             `db:"need_approval"`
	TotalCost            decimal.Decimal  `db:"total_cost"`
	CompanyRatio         decimal.Decimal  `db:"company_ratio"`
	CompanyBudget        *decimal.Decimal `db:"company_budget"` // Nullable
	CostPerPerson        decimal.Decimal  `db:"cost_per_person"`
	MinParticipants      int              `db:"min_participants"`
	MaxParticipants      *int             `db:"max_participants"` // Nullable
	CurrentParticipants  int              `db:"current_participants"`
	PaymentDeadline      *time.Time       `db:"payment_deadline"`
	RegistrationDeadline *time.Time       `db:"registration_deadline"`
	CostDescription      string           `db:"cost_description"`
	AuditFields
}

// ActivityExpense is one row of the activity_expenses table.
type ActivityExpense struct {
	ExpenseID   string          `db:"expense_id"`
	ActivityID  string          `db:"activity_id"`
	Item        string          `db:"item"`
	Amount      decimal.Decimal `db:"amount"`
	ExpenseDate time.Time       `db:"expense_date"`
	PayerID     *string         `db:"payer_id"`
	Description string          `db:"description"`
	AuditFields
}
