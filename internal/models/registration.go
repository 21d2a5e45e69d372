package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Registration is one row of the registrations table.
// Details is stored as JSONB.
type Registration struct {
	RegistrationID   string          `db:"registration_id"`
	ActivityID       string          `db:"activity_id"`
	UserID           string          `db:"user_id"`
	Status           string          `db:"status"`
	CostAmount       decimal.Decimal `db:"cost_amount"`
	PaidAmount       decimal.Decimal `db:"paid_amount"`
	PaymentStatus    string          `db:"payment_status"`
	CostSharingRatio decimal.Decimal `db:"cost_sharing_ratio"`
	Details          []byte          `db:"details"`
	ApprovedBy       *string         `db:"approved_by"`
	ApprovalTime     *time.Time      `db:"approval_time"`
	ApprovalNote     string          `db:"approval_note"`
	PaymentTime      *time.Time      `db:"payment_time"`
	AuditFields
}

// CostSharingRecord is one row of the cost_sharing_records table.
type CostSharingRecord struct {
	RecordID       string          `db:"record_id"`
	ActivityID     string          `db:"activity_id"`
	RegistrationID *string         `db:"registration_id"`
	UserID         *string         `db:"user_id"`
	CostType       string          `db:"cost_type"`
	Amount         decimal.Decimal `db:"amount"`
	Description    string          `db:"description"`
	CalculatedAt   time.Time       `db:"calculated_at"`
}
