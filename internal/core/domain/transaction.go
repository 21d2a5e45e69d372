package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of balance movement a ledger entry records.
type TransactionType string

const (
	TransactionRecharge TransactionType = "recharge"
	TransactionExpense  TransactionType = "expense"
	TransactionRefund   TransactionType = "refund"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionRecharge, TransactionExpense, TransactionRefund:
		return true
	}
	return false
}

// TransactionStatus of a ledger entry. Entries are only written once the balance change committed.
type TransactionStatus string

const TransactionCompleted TransactionStatus = "completed"

// Transaction is an immutable ledger entry. Append-only.
type Transaction struct {
	TransactionID string            `json:"transactionID"`
	UserID        string            `json:"userID"`
	Amount        decimal.Decimal   `json:"amount"` // Always positive, direction comes from Type
	Type          TransactionType   `json:"type"`
	Description   string            `json:"description"`
	Status        TransactionStatus `json:"status"`
	BalanceAfter  decimal.Decimal   `json:"balanceAfter"`
	ReferenceID   *string           `json:"referenceID,omitempty"` // e.g. the registration a payment settles
	CreatedAt     time.Time         `json:"createdAt"`
	CreatedBy     string            `json:"createdBy"`
}

// LedgerEntry is a request to move money on one account.
type LedgerEntry struct {
	UserID      string
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	ReferenceID *string
	ActorID     string // who triggered the movement, for audit
}

// LedgerResult is what a committed ledger entry produced.
type LedgerResult struct {
	TransactionID string
	NewBalance    decimal.Decimal
	Transaction   Transaction
}

// TransactionFilter narrows a transaction history query.
type TransactionFilter struct {
	Type *TransactionType
	From *time.Time
	To   *time.Time
}

// TransactionTypeTotals aggregates ledger entries of one type.
type TransactionTypeTotals struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// LedgerStatistics summarises balances and recent ledger activity.
type LedgerStatistics struct {
	AccountCount int64                                     `json:"accountCount"`
	TotalBalance decimal.Decimal                           `json:"totalBalance"`
	Since        time.Time                                 `json:"since"`
	ByType       map[TransactionType]TransactionTypeTotals `json:"byType"`
}
