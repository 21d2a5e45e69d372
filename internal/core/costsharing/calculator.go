// Package costsharing holds the pure cost-splitting functions.
// Nothing here touches storage; identical input always yields identical output.
package costsharing

import (
	"fmt"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

const currencyScale = 2

var hundred = decimal.NewFromInt(100)

// Config is the cost configuration of one activity.
type Config struct {
	TotalCost     decimal.Decimal
	CompanyRatio  decimal.Decimal  // Percentage, 0-100
	CompanyBudget *decimal.Decimal // Only used when BudgetCapped
	BudgetCapped  bool
}

// Shares is the outcome of one calculator run.
type Shares struct {
	CompanyCost       decimal.Decimal
	EmployeeTotalCost decimal.Decimal
	PerPersonAmount   decimal.Decimal
	// WithinBudget reports whether the budget covered the requested company coverage.
	// Always true for uncapped configurations.
	WithinBudget bool
}

// ValidateConfig rejects configurations the calculator cannot split.
func ValidateConfig(cfg Config) error {
	if cfg.TotalCost.IsNegative() {
		return fmt.Errorf("%w: total cost cannot be negative", apperrors.ErrValidation)
	}
	if cfg.CompanyRatio.IsNegative() || cfg.CompanyRatio.GreaterThan(hundred) {
		return fmt.Errorf("%w: company ratio must be between 0 and 100", apperrors.ErrValidation)
	}
	if cfg.CompanyBudget != nil && cfg.CompanyBudget.IsNegative() {
		return fmt.Errorf("%w: company budget cannot be negative", apperrors.ErrValidation)
	}
	return nil
}

// ComputeShares splits cfg.TotalCost between the company and participantCount participants.
//
// Standard split: companyCost = total * ratio / 100.
// Budget-capped split: companyCost = min(total, budget).
// The per-person amount is rounded to cents; the residue is left to the caller.
func ComputeShares(cfg Config, participantCount int) Shares {
	total := cfg.TotalCost.Round(currencyScale)

	var companyCost decimal.Decimal
	withinBudget := true
	if cfg.BudgetCapped && cfg.CompanyBudget != nil {
		budget := cfg.CompanyBudget.Round(currencyScale)
		companyCost = decimal.Min(total, budget)
		requested := total
		if cfg.CompanyRatio.IsPositive() {
			requested = total.Mul(cfg.CompanyRatio).Div(hundred).Round(currencyScale)
		}
		withinBudget = requested.LessThanOrEqual(budget)
	} else {
		companyCost = total.Mul(cfg.CompanyRatio).Div(hundred).Round(currencyScale)
	}

	employeeTotal := total.Sub(companyCost)

	perPerson := decimal.Zero
	if participantCount > 0 {
		perPerson = employeeTotal.DivRound(decimal.NewFromInt(int64(participantCount)), currencyScale)
	}

	return Shares{
		CompanyCost:       companyCost,
		EmployeeTotalCost: employeeTotal,
		PerPersonAmount:   perPerson,
		WithinBudget:      withinBudget,
	}
}
