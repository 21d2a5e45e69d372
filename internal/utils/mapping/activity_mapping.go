package mapping

import (
	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/SscSPs/costshare_ledger/internal/models"
)

// ToModelActivity converts a domain Activity to a model Activity
func ToModelActivity(d domain.Activity) models.Activity {
	return models.Activity{
		ActivityID:           d.ActivityID,
		Title:                d.Title,
		OrganizerID:          d.OrganizerID,
		Status:               string(d.Status),
		SpecialType:          string(d.SpecialType),
		NeedApproval:         d.NeedApproval,
		TotalCost:            d.TotalCost,
		CompanyRatio:         d.CompanyRatio,
		CompanyBudget:        d.CompanyBudget,
		CostPerPerson:        d.CostPerPerson,
		MinParticipants:      d.MinParticipants,
		MaxParticipants:      d.MaxParticipants,
		CurrentParticipants:  d.CurrentParticipants,
		PaymentDeadline:      d.PaymentDeadline,
		RegistrationDeadline: d.RegistrationDeadline,
		CostDescription:      d.CostDescription,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainActivity converts a model Activity to a domain Activity
func ToDomainActivity(m models.Activity) domain.Activity {
	return domain.Activity{
		ActivityID:           m.ActivityID,
		Title:                m.Title,
		OrganizerID:          m.OrganizerID,
		Status:               domain.ActivityStatus(m.Status),
		SpecialType:          domain.ActivitySpecialType(m.SpecialType),
		NeedApproval:         m.NeedApproval,
		TotalCost:            m.TotalCost,
		CompanyRatio:         m.CompanyRatio,
		CompanyBudget:        m.CompanyBudget,
		CostPerPerson:        m.CostPerPerson,
		MinParticipants:      m.MinParticipants,
		MaxParticipants:      m.MaxParticipants,
		CurrentParticipants:  m.CurrentParticipants,
		PaymentDeadline:      m.PaymentDeadline,
		RegistrationDeadline: m.RegistrationDeadline,
		CostDescription:      m.CostDescription,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelExpense converts a domain ActivityExpense to a model ActivityExpense
func ToModelExpense(d domain.ActivityExpense) models.ActivityExpense {
	return models.ActivityExpense{
		ExpenseID:   d.ExpenseID,
		ActivityID:  d.ActivityID,
		Item:        d.Item,
		Amount:      d.Amount,
		ExpenseDate: d.ExpenseDate,
		PayerID:     d.PayerID,
		Description: d.Description,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExpense converts a model ActivityExpense to a domain ActivityExpense
func ToDomainExpense(m models.ActivityExpense) domain.ActivityExpense {
	return domain.ActivityExpense{
		ExpenseID:   m.ExpenseID,
		ActivityID:  m.ActivityID,
		Item:        m.Item,
		Amount:      m.Amount,
		ExpenseDate: m.ExpenseDate,
		PayerID:     m.PayerID,
		Description: m.Description,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainExpenseSlice converts a slice of model expenses.
func ToDomainExpenseSlice(ms []models.ActivityExpense) []domain.ActivityExpense {
	ds := make([]domain.ActivityExpense, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainExpense(m)
	}
	return ds
}
