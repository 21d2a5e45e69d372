package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// RegistrationReader defines read operations for registration data
type RegistrationReader interface {
	// FindRegistrationByID returns ErrRegistrationNotFound when missing.
	FindRegistrationByID(ctx context.Context, registrationID string) (*domain.Registration, error)

	// ListRegistrationsByActivity lists an activity's registrations, optionally filtered by status.
	ListRegistrationsByActivity(ctx context.Context, activityID string, status *domain.RegistrationStatus) ([]domain.Registration, error)

	// ListRegistrationsByUser lists every registration a user has made, newest first.
	ListRegistrationsByUser(ctx context.Context, userID string) ([]domain.Registration, error)
}

// RegistrationTransactionSupport defines operations that run inside the activity-locked transaction.
type RegistrationTransactionSupport interface {
	// FindRegistrationForUpdate locks a registration row.
	FindRegistrationForUpdate(ctx context.Context, tx pgx.Tx, registrationID string) (*domain.Registration, error)

	// FindActiveRegistrationInTx returns the pending or approved registration of the pair, or ErrRegistrationNotFound.
	FindActiveRegistrationInTx(ctx context.Context, tx pgx.Tx, activityID, userID string) (*domain.Registration, error)

	// SaveRegistrationInTx inserts a registration. A live duplicate maps to ErrAlreadyRegistered.
	SaveRegistrationInTx(ctx context.Context, tx pgx.Tx, registration domain.Registration) error

	// UpdateRegistrationInTx writes the mutable fields of a registration.
	UpdateRegistrationInTx(ctx context.Context, tx pgx.Tx, registration domain.Registration) error

	// CountOccupiedSeatsInTx counts approved and completed registrations.
	CountOccupiedSeatsInTx(ctx context.Context, tx pgx.Tx, activityID string) (int, error)

	// ListApprovedInTx returns approved registrations ordered by (created_at, registration_id).
	ListApprovedInTx(ctx context.Context, tx pgx.Tx, activityID string) ([]domain.Registration, error)

	// UpdateCostAmountsInTx batch-writes cost_amount for registrations.
	UpdateCostAmountsInTx(ctx context.Context, tx pgx.Tx, amounts map[string]decimal.Decimal, now time.Time) error
}

// RegistrationRepositoryFacade combines all registration-related repository interfaces
type RegistrationRepositoryFacade interface {
	RegistrationReader
	RegistrationTransactionSupport
}
