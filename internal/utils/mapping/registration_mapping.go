package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/SscSPs/costshare_ledger/internal/models"
)

// ToModelRegistration converts a domain Registration to a model Registration.
// Details are serialised to JSON for the JSONB column.
func ToModelRegistration(d domain.Registration) (models.Registration, error) {
	details, err := json.Marshal(d.Details)
	if err != nil {
		return models.Registration{}, fmt.Errorf("failed to marshal registration details: %w", err)
	}
	return models.Registration{
		RegistrationID:   d.RegistrationID,
		ActivityID:       d.ActivityID,
		UserID:           d.UserID,
		Status:           string(d.Status),
		CostAmount:       d.CostAmount,
		PaidAmount:       d.PaidAmount,
		PaymentStatus:    string(d.PaymentStatus),
		CostSharingRatio: d.CostSharingRatio,
		Details:          details,
		ApprovedBy:       d.ApprovedBy,
		ApprovalTime:     d.ApprovalTime,
		ApprovalNote:     d.ApprovalNote,
		PaymentTime:      d.PaymentTime,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainRegistration converts a model Registration to a domain Registration
func ToDomainRegistration(m models.Registration) (domain.Registration, error) {
	var details domain.RegistrationDetails
	if len(m.Details) > 0 {
		if err := json.Unmarshal(m.Details, &details); err != nil {
			return domain.Registration{}, fmt.Errorf("failed to unmarshal details of registration %s: %w", m.RegistrationID, err)
		}
	}
	return domain.Registration{
		RegistrationID:   m.RegistrationID,
		ActivityID:       m.ActivityID,
		UserID:           m.UserID,
		Status:           domain.RegistrationStatus(m.Status),
		CostAmount:       m.CostAmount,
		PaidAmount:       m.PaidAmount,
		PaymentStatus:    domain.PaymentStatus(m.PaymentStatus),
		CostSharingRatio: m.CostSharingRatio,
		Details:          details,
		ApprovedBy:       m.ApprovedBy,
		ApprovalTime:     m.ApprovalTime,
		ApprovalNote:     m.ApprovalNote,
		PaymentTime:      m.PaymentTime,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}, nil
}

// ToDomainRegistrationSlice converts a slice of model registrations.
func ToDomainRegistrationSlice(ms []models.Registration) ([]domain.Registration, error) {
	ds := make([]domain.Registration, len(ms))
	for i, m := range ms {
		d, err := ToDomainRegistration(m)
		if err != nil {
			return nil, err
		}
		ds[i] = d
	}
	return ds, nil
}

// ToModelCostSharingRecord converts a domain CostSharingRecord to a model CostSharingRecord
func ToModelCostSharingRecord(d domain.CostSharingRecord) models.CostSharingRecord {
	return models.CostSharingRecord{
		RecordID:       d.RecordID,
		ActivityID:     d.ActivityID,
		RegistrationID: d.RegistrationID,
		UserID:         d.UserID,
		CostType:       string(d.CostType),
		Amount:         d.Amount,
		Description:    d.Description,
		CalculatedAt:   d.CalculatedAt,
	}
}

// ToDomainCostSharingRecord converts a model CostSharingRecord to a domain CostSharingRecord
func ToDomainCostSharingRecord(m models.CostSharingRecord) domain.CostSharingRecord {
	return domain.CostSharingRecord{
		RecordID:       m.RecordID,
		ActivityID:     m.ActivityID,
		RegistrationID: m.RegistrationID,
		UserID:         m.UserID,
		CostType:       domain.CostType(m.CostType),
		Amount:         m.Amount,
		Description:    m.Description,
		CalculatedAt:   m.CalculatedAt,
	}
}
