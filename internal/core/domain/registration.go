package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// RegistrationStatus is the lifecycle state of a participant's registration.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationApproved  RegistrationStatus = "approved"
	RegistrationRejected  RegistrationStatus = "rejected"
	RegistrationCancelled RegistrationStatus = "cancelled"
	RegistrationCompleted RegistrationStatus = "completed"
)

// registrationTransitions is the only place legal registration moves are defined.
// States without an entry are terminal.
var registrationTransitions = map[RegistrationStatus][]RegistrationStatus{
	RegistrationPending:  {RegistrationApproved, RegistrationRejected, RegistrationCancelled},
	RegistrationApproved: {RegistrationCancelled, RegistrationCompleted},
}

// IsValid reports whether s is a known registration status.
func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected, RegistrationCancelled, RegistrationCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s RegistrationStatus) IsTerminal() bool {
	return len(registrationTransitions[s]) == 0
}

// CanTransitionTo reports whether s -> next is legal.
func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	for _, allowed := range registrationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OccupiesSeat reports whether a registration in this status counts against capacity.
func (s RegistrationStatus) OccupiesSeat() bool {
	return s == RegistrationApproved || s == RegistrationCompleted
}

// PaymentStatus tracks money owed against a registration or a bill notice.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// RegistrationDetails are the free-form fields a participant submits on sign-up.
type RegistrationDetails struct {
	ParticipantNote     string `json:"participantNote"`
	ContactPhone        string `json:"contactPhone"`
	EmergencyContact    string `json:"emergencyContact"`
	DietaryRequirements string `json:"dietaryRequirements"`
}

// Registration is one user's application to join an activity.
type Registration struct {
	RegistrationID   string              `json:"registrationID"`
	ActivityID       string              `json:"activityID"`
	UserID           string              `json:"userID"`
	Status           RegistrationStatus  `json:"status"`
	CostAmount       decimal.Decimal     `json:"costAmount"` // Assigned share, 0 until approved
	PaidAmount       decimal.Decimal     `json:"paidAmount"`
	PaymentStatus    PaymentStatus       `json:"paymentStatus"`
	CostSharingRatio decimal.Decimal     `json:"costSharingRatio"`
	Details          RegistrationDetails `json:"details"`
	ApprovedBy       *string             `json:"approvedBy"`
	ApprovalTime     *time.Time          `json:"approvalTime"`
	ApprovalNote     string              `json:"approvalNote"`
	PaymentTime      *time.Time          `json:"paymentTime"`
	AuditFields
}

// TransitionTo moves the registration to next or fails with ErrInvalidStateTransition.
func (r *Registration) TransitionTo(next RegistrationStatus, actorID string, now time.Time) error {
	if !r.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: registration %s cannot move from %s to %s", apperrors.ErrInvalidStateTransition, r.RegistrationID, r.Status, next)
	}
	r.Status = next
	r.Touch(actorID, now)
	return nil
}

// RemainingAmount is what is still owed on the assigned share.
func (r Registration) RemainingAmount() decimal.Decimal {
	return r.CostAmount.Sub(r.PaidAmount)
}

// ApprovalAction is the organizer's decision on a pending registration.
type ApprovalAction string

const (
	ActionApprove ApprovalAction = "approve"
	ActionReject  ApprovalAction = "reject"
)

// CancelOptions controls Cancel. Refund must be requested explicitly for paid registrations.
type CancelOptions struct {
	Refund bool
}

// CancelResult is returned by a successful cancellation.
type CancelResult struct {
	Registration  Registration
	RefundAmount  decimal.Decimal
	TransactionID *string
}

// PaymentResult is returned by a successful registration payment.
type PaymentResult struct {
	Registration  Registration
	TransactionID string
	PaidAmount    decimal.Decimal
	NewBalance    decimal.Decimal
}

// RefundResult is returned by a successful refund.
type RefundResult struct {
	Registration  Registration
	TransactionID string
	RefundAmount  decimal.Decimal
	NewBalance    decimal.Decimal
}
