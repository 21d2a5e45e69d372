package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller is not allowed to act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrInternal is the fallback for infrastructure failures.
var ErrInternal = errors.New("internal error")

// Ledger errors.
var (
	ErrInsufficientFunds = errors.New("insufficient balance")
)

// Registration errors.
var (
	ErrAlreadyRegistered                 = errors.New("already registered for this activity")
	ErrActivityFull                      = errors.New("activity is full")
	ErrActivityNotAcceptingRegistrations = errors.New("activity is not accepting registrations")
	ErrRegistrationNotFound              = errors.New("registration not found")
	ErrAlreadyProcessed                  = errors.New("registration already processed")
	ErrCostConfigLocked                  = errors.New("cost configuration is locked once registrations are approved")
)

// ErrInvalidStateTransition covers illegal registration and bill transitions.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// Bill errors.
var (
	ErrAlreadyPushed = errors.New("bill already pushed")
	// ErrReconciliationMismatch means the stored shares do not add up to the total. Never corrected silently.
	ErrReconciliationMismatch = errors.New("bill reconciliation mismatch")
)

// AppError wraps an infrastructure error with an HTTP-ish code and a safe message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap keeps errors.Is working through the wrapper. A nil cause unwraps to ErrInternal.
func (e *AppError) Unwrap() error {
	if e.Err == nil {
		return ErrInternal
	}
	return e.Err
}
