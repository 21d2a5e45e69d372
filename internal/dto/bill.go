package dto

import (
	"time"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBillDraftRequest carries the organizer's overrides for a draft bill.
type CreateBillDraftRequest struct {
	CustomTotalCost *decimal.Decimal           `json:"customTotalCost" binding:"omitempty,money_nonneg"`
	Ratios          map[string]decimal.Decimal `json:"ratios"` // userID -> ratio
}

// ToOverrides converts the request into domain bill overrides.
func (r CreateBillDraftRequest) ToOverrides() domain.BillOverrides {
	return domain.BillOverrides{
		CustomTotalCost: r.CustomTotalCost,
		Ratios:          r.Ratios,
	}
}

// BillResponse defines the data returned for a bill.
type BillResponse struct {
	BillID             string              `json:"billID"`
	ActivityID         string              `json:"activityID"`
	CreatorID          string              `json:"creatorID"`
	TotalCost          decimal.Decimal     `json:"totalCost"`
	ExpenseTotalCost   decimal.Decimal     `json:"expenseTotalCost"`
	BaseTotalCost      decimal.Decimal     `json:"baseTotalCost"`
	UseCustomTotalCost bool                `json:"useCustomTotalCost"`
	CustomTotalCost    *decimal.Decimal    `json:"customTotalCost,omitempty"`
	CompanyCost        decimal.Decimal     `json:"companyCost"`
	ParticipantCount   int                 `json:"participantCount"`
	TotalRatio         decimal.Decimal     `json:"totalRatio"`
	AverageCost        decimal.Decimal     `json:"averageCost"`
	Status             domain.BillStatus   `json:"status"`
	BillDetails        []domain.BillDetail `json:"billDetails"`
	PushedAt           *time.Time          `json:"pushedAt,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	LastUpdatedAt      time.Time           `json:"lastUpdatedAt"`
}

// ToBillResponse converts a domain.Bill to BillResponse DTO
func ToBillResponse(b *domain.Bill) BillResponse {
	details := b.Details
	if details == nil {
		details = []domain.BillDetail{}
	}
	return BillResponse{
		BillID:             b.BillID,
		ActivityID:         b.ActivityID,
		CreatorID:          b.CreatorID,
		TotalCost:          b.TotalCost,
		ExpenseTotalCost:   b.ExpenseTotalCost,
		BaseTotalCost:      b.BaseTotalCost,
		UseCustomTotalCost: b.UseCustomTotalCost,
		CustomTotalCost:    b.CustomTotalCost,
		CompanyCost:        b.CompanyCost,
		ParticipantCount:   b.ParticipantCount,
		TotalRatio:         b.TotalRatio,
		AverageCost:        b.AverageCost,
		Status:             b.Status,
		BillDetails:        details,
		PushedAt:           b.PushedAt,
		CreatedAt:          b.CreatedAt,
		LastUpdatedAt:      b.LastUpdatedAt,
	}
}

// ToBillResponses converts a slice of bills.
func ToBillResponses(bills []domain.Bill) []BillResponse {
	res := make([]BillResponse, len(bills))
	for i := range bills {
		res[i] = ToBillResponse(&bills[i])
	}
	return res
}

// ListBillsParams defines query parameters for an activity's bill history.
type ListBillsParams struct {
	Status string `form:"status" binding:"omitempty,oneof=draft saved pushed"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int    `form:"offset,default=0" binding:"min=0"`
}

// PushBillResponse is the pushed bill and the per-recipient dispatch outcome.
type PushBillResponse struct {
	Bill            BillResponse            `json:"bill"`
	DispatchResults []domain.DispatchResult `json:"dispatchResults"`
	FailedCount     int                     `json:"failedCount"`
}

// NewPushBillResponse builds a PushBillResponse and counts failed deliveries.
func NewPushBillResponse(b *domain.Bill, results []domain.DispatchResult) PushBillResponse {
	failed := 0
	for _, r := range results {
		if r.Status != domain.DeliveryDelivered {
			failed++
		}
	}
	if results == nil {
		results = []domain.DispatchResult{}
	}
	return PushBillResponse{Bill: ToBillResponse(b), DispatchResults: results, FailedCount: failed}
}

// MarkNoticePaidRequest records how a bill notice was settled.
type MarkNoticePaidRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"max=50"`
	PaymentNote   string `json:"paymentNote" binding:"max=500"`
}

// ListMessagesParams pages the caller's inbox.
type ListMessagesParams struct {
	Limit int `form:"limit,default=50" binding:"min=1,max=200"`
}
