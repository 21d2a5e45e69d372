package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is one row of the accounts table. There is exactly one per user.
type Account struct {
	UserID  string          `db:"user_id"`
	Balance decimal.Decimal `db:"balance"`
	AuditFields
}

// Transaction is an append-only row of the transactions table.
type Transaction struct {
	TransactionID string          `db:"transaction_id"`
	UserID        string          `db:"user_id"`
	Amount        decimal.Decimal `db:"amount"`
	Type          string          `db:"type"`
	Description   string          `db:"description"`
	Status        string          `db:"status"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	ReferenceID   *string         `db:"reference_id"` // Nullable
	CreatedAt     time.Time       `db:"created_at"`
	CreatedBy     string          `db:"created_by"`
}
