package domain

import (
	"fmt"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// CurrencyScale is the number of decimal places every stored amount carries.
const CurrencyScale = 2

// Account holds the virtual balance of a single user.
// Created lazily on first reference, never deleted.
type Account struct {
	UserID      string          `json:"userID"`
	Balance     decimal.Decimal `json:"balance"` // Never negative
	AuditFields                 // Embed CreatedAt, CreatedBy, etc.
}

// ValidateAmount checks that an amount is positive and fits the currency scale.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	if !amount.Equal(amount.Round(CurrencyScale)) {
		return fmt.Errorf("%w: amount %s has more than %d decimal places", apperrors.ErrValidation, amount.String(), CurrencyScale)
	}
	return nil
}

// NextBalance returns the balance after applying a ledger entry of the given type.
// An expense larger than the current balance fails with ErrInsufficientFunds.
func NextBalance(current decimal.Decimal, txType TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateAmount(amount); err != nil {
		return current, err
	}

	switch txType {
	case TransactionRecharge, TransactionRefund:
		return current.Add(amount), nil
	case TransactionExpense:
		if current.LessThan(amount) {
			return current, fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, current.StringFixed(CurrencyScale), amount.StringFixed(CurrencyScale))
		}
		return current.Sub(amount), nil
	default:
		return current, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, txType)
	}
}
