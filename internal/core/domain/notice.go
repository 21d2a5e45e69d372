package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryStatus tracks handing a notice to the messaging collaborator.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// BillNotice is the outbox row for one participant of a pushed bill.
// Payment fields stay writable after push; they live outside the Bill record.
type BillNotice struct {
	NoticeID            string          `json:"noticeID"`
	BillID              string          `json:"billID"`
	ActivityID          string          `json:"activityID"`
	UserID              string          `json:"userID"`
	Amount              decimal.Decimal `json:"amount"`
	CostSharingRatio    decimal.Decimal `json:"costSharingRatio"`
	PaymentDeadline     *time.Time      `json:"paymentDeadline"`
	CostSharingRecordID *string         `json:"costSharingRecordID"`
	PaymentStatus       PaymentStatus   `json:"paymentStatus"`
	PaymentTime         *time.Time      `json:"paymentTime"`
	PaymentMethod       string          `json:"paymentMethod"`
	PaymentNote         string          `json:"paymentNote"`
	DeliveryStatus      DeliveryStatus  `json:"deliveryStatus"`
	Attempts            int             `json:"attempts"`
	LastError           string          `json:"lastError"`
	DeliveredAt         *time.Time      `json:"deliveredAt"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// DispatchResult is the per-recipient outcome of delivering a bill.
type DispatchResult struct {
	NoticeID string          `json:"noticeID"`
	UserID   string          `json:"userID"`
	Amount   decimal.Decimal `json:"amount"`
	Status   DeliveryStatus  `json:"status"`
	Error    string          `json:"error,omitempty"`
}

// MessagePriority of a user-facing message.
type MessagePriority string

const (
	PriorityNormal MessagePriority = "normal"
	PriorityHigh   MessagePriority = "high"
)

// BillMessageMetadata is the typed payload attached to a bill message.
type BillMessageMetadata struct {
	Type                string          `json:"type"`
	BillID              string          `json:"bill_id"`
	NoticeID            string          `json:"notice_id"`
	ActivityID          string          `json:"activity_id"`
	ActivityTitle       string          `json:"activity_title"`
	Amount              decimal.Decimal `json:"amount"`
	CostSharingRatio    decimal.Decimal `json:"cost_sharing_ratio"`
	BillDate            time.Time       `json:"bill_date"`
	PaymentDeadline     *time.Time      `json:"payment_deadline"`
	CostSharingRecordID *string         `json:"cost_sharing_record_id"`
	PaymentStatus       PaymentStatus   `json:"payment_status"`
}

// Message is what the messaging collaborator receives for one recipient.
type Message struct {
	MessageID   string              `json:"messageID"`
	RecipientID string              `json:"recipientID"`
	SenderID    string              `json:"senderID"`
	Title       string              `json:"title"`
	Content     string              `json:"content"`
	Priority    MessagePriority     `json:"priority"`
	Metadata    BillMessageMetadata `json:"metadata"`
	CreatedAt   time.Time           `json:"createdAt"`
}
