package services

import (
	"context"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RegistrationReaderSvc defines read operations for registrations
type RegistrationReaderSvc interface {
	GetRegistration(ctx context.Context, registrationID string, userID string) (*domain.Registration, error)
	ListByActivity(ctx context.Context, activityID string, status *domain.RegistrationStatus) ([]domain.Registration, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Registration, error)
}

// RegistrationLifecycleSvc drives the registration state machine
type RegistrationLifecycleSvc interface {
	Register(ctx context.Context, activityID string, userID string, details domain.RegistrationDetails) (*domain.Registration, error)
	Approve(ctx context.Context, registrationID string, approverID string, action domain.ApprovalAction, note string) (*domain.Registration, error)
	Cancel(ctx context.Context, registrationID string, userID string, opts domain.CancelOptions) (*domain.CancelResult, error)
	Complete(ctx context.Context, registrationID string, userID string) (*domain.Registration, error)
	SetCostSharingRatio(ctx context.Context, registrationID string, userID string, ratio decimal.Decimal) (*domain.Registration, error)
}

// RegistrationPaymentSvc moves money for registrations through the ledger
type RegistrationPaymentSvc interface {
	Pay(ctx context.Context, registrationID string, userID string) (*domain.PaymentResult, error)
	Refund(ctx context.Context, registrationID string, userID string) (*domain.RefundResult, error)
}

// CostSharingRecalculatorSvc rebuilds an activity's cost-sharing set
type CostSharingRecalculatorSvc interface {
	Recalculate(ctx context.Context, activityID string, userID string) ([]domain.CostSharingRecord, error)
}

// RegistrationSvcFacade combines all registration service interfaces
type RegistrationSvcFacade interface {
	RegistrationReaderSvc
	RegistrationLifecycleSvc
	RegistrationPaymentSvc
	CostSharingRecalculatorSvc
}
