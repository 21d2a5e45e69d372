package dto

import (
	"time"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateActivityRequest defines the data needed to create an activity.
type CreateActivityRequest struct {
	Title                string                     `json:"title" binding:"required,max=200"`
	Status               domain.ActivityStatus      `json:"status" binding:"omitempty,oneof=draft published registration_open"`
	SpecialType          domain.ActivitySpecialType `json:"specialType" binding:"omitempty,oneof=normal dinner_party team_building company_event"`
	NeedApproval         bool                       `json:"needApproval"`
	TotalCost            decimal.Decimal            `json:"totalCost" binding:"money_nonneg"`
	CompanyRatio         decimal.Decimal            `json:"companyRatio" binding:"percent"`
	CompanyBudget        *decimal.Decimal           `json:"companyBudget" binding:"omitempty,money_nonneg"`
	MinParticipants      int                        `json:"minParticipants" binding:"min=0"`
	MaxParticipants      *int                       `json:"maxParticipants" binding:"omitempty,min=1"`
	PaymentDeadline      *time.Time                 `json:"paymentDeadline"`
	RegistrationDeadline *time.Time                 `json:"registrationDeadline"`
	CostDescription      string                     `json:"costDescription"`
}

// UpdateCostConfigRequest replaces the cost configuration of an activity.
type UpdateCostConfigRequest struct {
	SpecialType     domain.ActivitySpecialType `json:"specialType" binding:"omitempty,oneof=normal dinner_party team_building company_event"`
	TotalCost       decimal.Decimal            `json:"totalCost" binding:"money_nonneg"`
	CompanyRatio    decimal.Decimal            `json:"companyRatio" binding:"percent"`
	CompanyBudget   *decimal.Decimal           `json:"companyBudget" binding:"omitempty,money_nonneg"`
	MaxParticipants *int                       `json:"maxParticipants" binding:"omitempty,min=1"`
	PaymentDeadline *time.Time                 `json:"paymentDeadline"`
	CostDescription *string                    `json:"costDescription"`
}

// UpdateActivityStatusRequest changes the lifecycle status of an activity.
type UpdateActivityStatusRequest struct {
	Status domain.ActivityStatus `json:"status" binding:"required,oneof=draft published registration_open ongoing completed cancelled"`
}

// ActivityResponse defines the data returned for an activity.
type ActivityResponse struct {
	ActivityID           string                     `json:"activityID"`
	Title                string                     `json:"title"`
	OrganizerID          string                     `json:"organizerID"`
	Status               domain.ActivityStatus      `json:"status"`
	SpecialType          domain.ActivitySpecialType `json:"specialType"`
	NeedApproval         bool                       `json:"needApproval"`
	TotalCost            decimal.Decimal            `json:"totalCost"`
	CompanyRatio         decimal.Decimal            `json:"companyRatio"`
	CompanyBudget        *decimal.Decimal           `json:"companyBudget,omitempty"`
	CostPerPerson        decimal.Decimal            `json:"costPerPerson"`
	MinParticipants      int                        `json:"minParticipants"`
	MaxParticipants      *int                       `json:"maxParticipants,omitempty"`
	CurrentParticipants  int                        `json:"currentParticipants"`
	PaymentDeadline      *time.Time                 `json:"paymentDeadline,omitempty"`
	RegistrationDeadline *time.Time                 `json:"registrationDeadline,omitempty"`
	CostDescription      string                     `json:"costDescription"`
	CreatedAt            time.Time                  `json:"createdAt"`
	LastUpdatedAt        time.Time                  `json:"lastUpdatedAt"`
}

// ToActivityResponse converts a domain.Activity to ActivityResponse DTO
func ToActivityResponse(a *domain.Activity) ActivityResponse {
	return ActivityResponse{
		ActivityID:           a.ActivityID,
		Title:                a.Title,
		OrganizerID:          a.OrganizerID,
		Status:               a.Status,
		SpecialType:          a.SpecialType,
		NeedApproval:         a.NeedApproval,
		TotalCost:            a.TotalCost,
		CompanyRatio:         a.CompanyRatio,
		CompanyBudget:        a.CompanyBudget,
		CostPerPerson:        a.CostPerPerson,
		MinParticipants:      a.MinParticipants,
		MaxParticipants:      a.MaxParticipants,
		CurrentParticipants:  a.CurrentParticipants,
		PaymentDeadline:      a.PaymentDeadline,
		RegistrationDeadline: a.RegistrationDeadline,
		CostDescription:      a.CostDescription,
		CreatedAt:            a.CreatedAt,
		LastUpdatedAt:        a.LastUpdatedAt,
	}
}

// RecordExpenseRequest defines an expense item to record against an activity.
type RecordExpenseRequest struct {
	Item        string          `json:"item" binding:"required,max=200"`
	Amount      decimal.Decimal `json:"amount" binding:"money"`
	ExpenseDate *time.Time      `json:"expenseDate"`
	PayerID     *string         `json:"payerID"`
	Description string          `json:"description"`
}

// ExpenseResponse defines the data returned for an expense.
type ExpenseResponse struct {
	ExpenseID   string          `json:"expenseID"`
	ActivityID  string          `json:"activityID"`
	Item        string          `json:"item"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expenseDate"`
	PayerID     *string         `json:"payerID,omitempty"`
	Description string          `json:"description"`
	CreatedBy   string          `json:"createdBy"`
}

// ToExpenseResponse converts a domain.ActivityExpense to ExpenseResponse DTO
func ToExpenseResponse(e domain.ActivityExpense) ExpenseResponse {
	return ExpenseResponse{
		ExpenseID:   e.ExpenseID,
		ActivityID:  e.ActivityID,
		Item:        e.Item,
		Amount:      e.Amount,
		ExpenseDate: e.ExpenseDate,
		PayerID:     e.PayerID,
		Description: e.Description,
		CreatedBy:   e.CreatedBy,
	}
}

// CostSharingRecordResponse defines one row of an activity's cost split.
type CostSharingRecordResponse struct {
	RecordID       string          `json:"recordID"`
	RegistrationID *string         `json:"registrationID,omitempty"`
	UserID         *string         `json:"userID,omitempty"`
	CostType       domain.CostType `json:"costType"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	CalculatedAt   time.Time       `json:"calculatedAt"`
}

// ActivityCostSharingResponse is the activity together with its cost-sharing records.
type ActivityCostSharingResponse struct {
	Activity           ActivityResponse            `json:"activity"`
	CostSharingRecords []CostSharingRecordResponse `json:"costSharingRecords"`
}

// ToCostSharingRecordResponses converts cost-sharing records.
func ToCostSharingRecordResponses(records []domain.CostSharingRecord) []CostSharingRecordResponse {
	res := make([]CostSharingRecordResponse, len(records))
	for i, r := range records {
		res[i] = CostSharingRecordResponse{
			RecordID:       r.RecordID,
			RegistrationID: r.RegistrationID,
			UserID:         r.UserID,
			CostType:       r.CostType,
			Amount:         r.Amount,
			Description:    r.Description,
			CalculatedAt:   r.CalculatedAt,
		}
	}
	return res
}
