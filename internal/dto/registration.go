package dto

import (
	"time"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RegisterRequest carries the participant's sign-up details. All fields are optional.
type RegisterRequest struct {
	ParticipantNote     string `json:"participantNote" binding:"max=1000"`
	ContactPhone        string `json:"contactPhone" binding:"max=32"`
	EmergencyContact    string `json:"emergencyContact" binding:"max=200"`
	DietaryRequirements string `json:"dietaryRequirements" binding:"max=500"`
}

// ToDetails converts the request into domain registration details.
func (r RegisterRequest) ToDetails() domain.RegistrationDetails {
	return domain.RegistrationDetails{
		ParticipantNote:     r.ParticipantNote,
		ContactPhone:        r.ContactPhone,
		EmergencyContact:    r.EmergencyContact,
		DietaryRequirements: r.DietaryRequirements,
	}
}

// RegistrationResponse defines the data returned for a registration.
type RegistrationResponse struct {
	RegistrationID   string                     `json:"registrationID"`
	ActivityID       string                     `json:"activityID"`
	UserID           string                     `json:"userID"`
	Status           domain.RegistrationStatus  `json:"status"`
	CostAmount       decimal.Decimal            `json:"costAmount"`
	PaidAmount       decimal.Decimal            `json:"paidAmount"`
	PaymentStatus    domain.PaymentStatus       `json:"paymentStatus"`
	CostSharingRatio decimal.Decimal            `json:"costSharingRatio"`
	Details          domain.RegistrationDetails `json:"details"`
	ApprovedBy       *string                    `json:"approvedBy,omitempty"`
	ApprovalTime     *time.Time                 `json:"approvalTime,omitempty"`
	ApprovalNote     string                     `json:"approvalNote,omitempty"`
	PaymentTime      *time.Time                 `json:"paymentTime,omitempty"`
	CreatedAt        time.Time                  `json:"createdAt"`
}

// ToRegistrationResponse converts a domain.Registration to RegistrationResponse DTO
func ToRegistrationResponse(r *domain.Registration) RegistrationResponse {
	return RegistrationResponse{
		RegistrationID:   r.RegistrationID,
		ActivityID:       r.ActivityID,
		UserID:           r.UserID,
		Status:           r.Status,
		CostAmount:       r.CostAmount,
		PaidAmount:       r.PaidAmount,
		PaymentStatus:    r.PaymentStatus,
		CostSharingRatio: r.CostSharingRatio,
		Details:          r.Details,
		ApprovedBy:       r.ApprovedBy,
		ApprovalTime:     r.ApprovalTime,
		ApprovalNote:     r.ApprovalNote,
		PaymentTime:      r.PaymentTime,
		CreatedAt:        r.CreatedAt,
	}
}

// ToRegistrationResponses converts a slice of registrations.
func ToRegistrationResponses(regs []domain.Registration) []RegistrationResponse {
	res := make([]RegistrationResponse, len(regs))
	for i := range regs {
		res[i] = ToRegistrationResponse(&regs[i])
	}
	return res
}

// ListRegistrationsParams filters an activity's registrations.
type ListRegistrationsParams struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled completed"`
}

// ApproveRegistrationRequest is the organizer's decision on a pending registration.
type ApproveRegistrationRequest struct {
	Action domain.ApprovalAction `json:"action" binding:"omitempty,oneof=approve reject"`
	Note   string                `json:"note" binding:"max=1000"`
}

// CancelRegistrationRequest asks for a cancellation. Refund must be set to cancel a paid registration.
type CancelRegistrationRequest struct {
	Refund bool `json:"refund"`
}

// CancelRegistrationResponse is returned after a cancellation.
type CancelRegistrationResponse struct {
	Registration  RegistrationResponse `json:"registration"`
	RefundAmount  decimal.Decimal      `json:"refundAmount"`
	TransactionID *string              `json:"transactionID,omitempty"`
}

// PayRegistrationResponse is returned after a successful payment.
type PayRegistrationResponse struct {
	TransactionID string          `json:"transactionID"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	NewBalance    decimal.Decimal `json:"newBalance"`
}

// RefundRegistrationResponse is returned after a refund.
type RefundRegistrationResponse struct {
	TransactionID string          `json:"transactionID"`
	RefundAmount  decimal.Decimal `json:"refundAmount"`
	NewBalance    decimal.Decimal `json:"newBalance"`
}

// SetRatioRequest changes a participant's cost-sharing ratio.
type SetRatioRequest struct {
	Ratio decimal.Decimal `json:"ratio" binding:"ratio"`
}
