package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostType distinguishes the organizer's subsidised portion from participant shares.
type CostType string

const (
	CostTypeOrganizer   CostType = "organizer"
	CostTypeParticipant CostType = "participant"
)

// CostSharingRecord is one derived row of an activity's cost split.
// The full set for an activity is replaced on every recalculation.
type CostSharingRecord struct {
	RecordID       string          `json:"recordID"`
	ActivityID     string          `json:"activityID"`
	RegistrationID *string         `json:"registrationID"`
	UserID         *string         `json:"userID"` // Nil for organizer rows without a user
	CostType       CostType        `json:"costType"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	CalculatedAt   time.Time       `json:"calculatedAt"`
}
