package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill is one row of the bills table. Details holds the per-participant
// breakdown as JSONB.
type Bill struct {
	BillID             string           `db:"bill_id"`
	ActivityID         string           `db:"activity_id"`
	CreatorID          string           `db:"creator_id"`
	TotalCost          decimal.Decimal  `db:"total_cost"`
	ExpenseTotalCost   decimal.Decimal  `db:"expense_total_cost"`
	BaseTotalCost      decimal.Decimal  `db:"base_total_cost"`
	UseCustomTotalCost bool             `db:"use_custom_total_cost"`
	CustomTotalCost    *decimal.Decimal `db:"custom_total_cost"`
	CompanyCost        decimal.Decimal  `db:"company_cost"`
	ParticipantCount   int              `db:"participant_count"`
	TotalRatio         decimal.Decimal  `db:"total_ratio"`
	AverageCost        decimal.Decimal  `db:"average_cost"`
	Status             string           `db:"status"`
	Details            []byte           `db:"bill_details"`
	PushedAt           *time.Time       `db:"pushed_at"`
	Version            int              `db:"version"`
	AuditFields
}

// BillNotice is one row of the bill_notices outbox table.
type BillNotice struct {
	NoticeID            string          `db:"notice_id"`
	BillID              string          `db:"bill_id"`
	ActivityID          string          `db:"activity_id"`
	UserID              string          `db:"user_id"`
	Amount              decimal.Decimal `db:"amount"`
	CostSharingRatio    decimal.Decimal `db:"cost_sharing_ratio"`
	PaymentDeadline     *time.Time      `db:"payment_deadline"`
	CostSharingRecordID *string         `db:"cost_sharing_record_id"`
	PaymentStatus       string          `db:"payment_status"`
	PaymentTime         *time.Time      `db:"payment_time"`
	PaymentMethod       string          `db:"payment_method"`
	PaymentNote         string          `db:"payment_note"`
	DeliveryStatus      string          `db:"delivery_status"`
	Attempts            int             `db:"attempts"`
	LastError           string          `db:"last_error"`
	DeliveredAt         *time.Time      `db:"delivered_at"`
	CreatedAt           time.Time       `db:"created_at"`
}

// Message is one row of the messages table. Metadata is JSONB.
type Message struct {
	MessageID   string    `db:"message_id"`
	RecipientID string    `db:"recipient_id"`
	SenderID    string    `db:"sender_id"`
	Title       string    `db:"title"`
	Content     string    `db:"content"`
	Priority    string    `db:"priority"`
	Metadata    []byte    `db:"metadata"`
	CreatedAt   time.Time `db:"created_at"`
}
