package dto

import (
	"time"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RechargeRequest defines the data needed to top up the caller's balance.
type RechargeRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"money"`
	Description string          `json:"description" binding:"max=255"`
}

// RechargeResponse is returned after a successful recharge.
type RechargeResponse struct {
	TransactionID string          `json:"transactionID"`
	NewBalance    decimal.Decimal `json:"newBalance"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	UserID        string          `json:"userID"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		UserID:        acc.UserID,
		Balance:       acc.Balance,
		CreatedAt:     acc.CreatedAt,
		LastUpdatedAt: acc.LastUpdatedAt,
	}
}

// ListTransactionsParams defines query parameters for the transaction history.
type ListTransactionsParams struct {
	Limit     int        `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken string     `form:"nextToken"`
	Type      string     `form:"type" binding:"omitempty,oneof=recharge expense refund"`
	From      *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	TransactionID string                 `json:"transactionID"`
	UserID        string                 `json:"userID"`
	Amount        decimal.Decimal        `json:"amount"`
	Type          domain.TransactionType `json:"type"`
	Description   string                 `json:"description"`
	Status        string                 `json:"status"`
	BalanceAfter  decimal.Decimal        `json:"balanceAfter"`
	ReferenceID   *string                `json:"referenceID,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// ListTransactionsResponse is one page of ledger entries.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		UserID:        t.UserID,
		Amount:        t.Amount,
		Type:          t.Type,
		Description:   t.Description,
		Status:        string(t.Status),
		BalanceAfter:  t.BalanceAfter,
		ReferenceID:   t.ReferenceID,
		CreatedAt:     t.CreatedAt,
	}
}

// ToListTransactionsResponse converts a page of transactions.
func ToListTransactionsResponse(txns []domain.Transaction, nextToken *string) ListTransactionsResponse {
	res := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		res[i] = ToTransactionResponse(t)
	}
	return ListTransactionsResponse{Transactions: res, NextToken: nextToken}
}

// StatisticsParams defines query parameters for ledger statistics.
type StatisticsParams struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"`
}
