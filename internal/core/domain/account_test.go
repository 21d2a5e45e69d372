package domain_test

import (
	"testing"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNextBalance(t *testing.T) {
	tests := []struct {
		name    string
		current string
		txType  domain.TransactionType
		amount  string
		want    string
		wantErr error
	}{
		{name: "recharge adds", current: "10.00", txType: domain.TransactionRecharge, amount: "5.50", want: "15.50"},
		{name: "refund adds", current: "0", txType: domain.TransactionRefund, amount: "20", want: "20"},
		{name: "expense subtracts", current: "50.00", txType: domain.TransactionExpense, amount: "50.00", want: "0"},
		{name: "expense over balance", current: "50.00", txType: domain.TransactionExpense, amount: "75.00", want: "50.00", wantErr: apperrors.ErrInsufficientFunds},
		{name: "zero amount", current: "50.00", txType: domain.TransactionRecharge, amount: "0", want: "50.00", wantErr: apperrors.ErrValidation},
		{name: "negative amount", current: "50.00", txType: domain.TransactionRecharge, amount: "-1", want: "50.00", wantErr: apperrors.ErrValidation},
		{name: "sub-cent amount", current: "50.00", txType: domain.TransactionRecharge, amount: "0.001", want: "50.00", wantErr: apperrors.ErrValidation},
		{name: "unknown type", current: "50.00", txType: domain.TransactionType("gift"), amount: "1", want: "50.00", wantErr: apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.NextBalance(dec(tt.current), tt.txType, dec(tt.amount))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.True(t, dec(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestNextBalance_NeverNegative(t *testing.T) {
	balance := dec("0")
	steps := []struct {
		txType domain.TransactionType
		amount string
	}{
		{domain.TransactionRecharge, "30"},
		{domain.TransactionExpense, "10.01"},
		{domain.TransactionExpense, "25"},
		{domain.TransactionExpense, "19.99"},
		{domain.TransactionExpense, "0.01"},
		{domain.TransactionRefund, "0.01"},
		{domain.TransactionExpense, "0.02"},
	}
	for _, s := range steps {
		next, err := domain.NextBalance(balance, s.txType, dec(s.amount))
		if err == nil {
			balance = next
		}
		assert.False(t, balance.IsNegative())
	}
	assert.True(t, dec("0.01").Equal(balance))
}

func TestTransactionType_IsValid(t *testing.T) {
	assert.True(t, domain.TransactionRecharge.IsValid())
	assert.True(t, domain.TransactionExpense.IsValid())
	assert.True(t, domain.TransactionRefund.IsValid())
	assert.False(t, domain.TransactionType("withdrawal").IsValid())
}
