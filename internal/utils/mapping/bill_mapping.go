package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/SscSPs/costshare_ledger/internal/models"
)

// ToModelBill converts a domain Bill to a model Bill, serialising the details for JSONB.
func ToModelBill(d domain.Bill) (models.Bill, error) {
	details := d.Details
	if details == nil {
		details = []domain.BillDetail{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return models.Bill{}, fmt.Errorf("failed to marshal bill details: %w", err)
	}
	return models.Bill{
		BillID:             d.BillID,
		ActivityID:         d.ActivityID,
		CreatorID:          d.CreatorID,
		TotalCost:          d.TotalCost,
		ExpenseTotalCost:   d.ExpenseTotalCost,
		BaseTotalCost:      d.BaseTotalCost,
		UseCustomTotalCost: d.UseCustomTotalCost,
		CustomTotalCost:    d.CustomTotalCost,
		CompanyCost:        d.CompanyCost,
		ParticipantCount:   d.ParticipantCount,
		TotalRatio:         d.TotalRatio,
		AverageCost:        d.AverageCost,
		Status:             string(d.Status),
		Details:            raw,
		PushedAt:           d.PushedAt,
		Version:            d.Version,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainBill converts a model Bill to a domain Bill
func ToDomainBill(m models.Bill) (domain.Bill, error) {
	var details []domain.BillDetail
	if len(m.Details) > 0 {
		if err := json.Unmarshal(m.Details, &details); err != nil {
			return domain.Bill{}, fmt.Errorf("failed to unmarshal details of bill %s: %w", m.BillID, err)
		}
	}
	return domain.Bill{
		BillID:             m.BillID,
		ActivityID:         m.ActivityID,
		CreatorID:          m.CreatorID,
		TotalCost:          m.TotalCost,
		ExpenseTotalCost:   m.ExpenseTotalCost,
		BaseTotalCost:      m.BaseTotalCost,
		UseCustomTotalCost: m.UseCustomTotalCost,
		CustomTotalCost:    m.CustomTotalCost,
		CompanyCost:        m.CompanyCost,
		ParticipantCount:   m.ParticipantCount,
		TotalRatio:         m.TotalRatio,
		AverageCost:        m.AverageCost,
		Status:             domain.BillStatus(m.Status),
		Details:            details,
		PushedAt:           m.PushedAt,
		Version:            m.Version,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}, nil
}

// ToModelBillNotice converts a domain BillNotice to a model BillNotice
func ToModelBillNotice(d domain.BillNotice) models.BillNotice {
	return models.BillNotice{
		NoticeID:            d.NoticeID,
		BillID:              d.BillID,
		ActivityID:          d.ActivityID,
		UserID:              d.UserID,
		Amount:              d.Amount,
		CostSharingRatio:    d.CostSharingRatio,
		PaymentDeadline:     d.PaymentDeadline,
		CostSharingRecordID: d.CostSharingRecordID,
		PaymentStatus:       string(d.PaymentStatus),
		PaymentTime:         d.PaymentTime,
		PaymentMethod:       d.PaymentMethod,
		PaymentNote:         d.PaymentNote,
		DeliveryStatus:      string(d.DeliveryStatus),
		Attempts:            d.Attempts,
		LastError:           d.LastError,
		DeliveredAt:         d.DeliveredAt,
		CreatedAt:           d.CreatedAt,
	}
}

// ToDomainBillNotice converts a model BillNotice to a domain BillNotice
func ToDomainBillNotice(m models.BillNotice) domain.BillNotice {
	return domain.BillNotice{
		NoticeID:            m.NoticeID,
		BillID:              m.BillID,
		ActivityID:          m.ActivityID,
		UserID:              m.UserID,
		Amount:              m.Amount,
		CostSharingRatio:    m.CostSharingRatio,
		PaymentDeadline:     m.PaymentDeadline,
		CostSharingRecordID: m.CostSharingRecordID,
		PaymentStatus:       domain.PaymentStatus(m.PaymentStatus),
		PaymentTime:         m.PaymentTime,
		PaymentMethod:       m.PaymentMethod,
		PaymentNote:         m.PaymentNote,
		DeliveryStatus:      domain.DeliveryStatus(m.DeliveryStatus),
		Attempts:            m.Attempts,
		LastError:           m.LastError,
		DeliveredAt:         m.DeliveredAt,
		CreatedAt:           m.CreatedAt,
	}
}

// ToModelMessage converts a domain Message to a model Message, serialising the metadata.
func ToModelMessage(d domain.Message) (models.Message, error) {
	meta, err := json.Marshal(d.Metadata)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to marshal message metadata: %w", err)
	}
	return models.Message{
		MessageID:   d.MessageID,
		RecipientID: d.RecipientID,
		SenderID:    d.SenderID,
		Title:       d.Title,
		Content:     d.Content,
		Priority:    string(d.Priority),
		Metadata:    meta,
		CreatedAt:   d.CreatedAt,
	}, nil
}
