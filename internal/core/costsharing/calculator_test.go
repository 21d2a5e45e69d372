package costsharing_test

import (
	"testing"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/SscSPs/costshare_ledger/internal/core/costsharing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestComputeShares_Scenarios(t *testing.T) {
	tests := []struct {
		name          string
		cfg           costsharing.Config
		participants  int
		wantCompany   string
		wantEmployee  string
		wantPerPerson string
		wantWithin    bool
	}{
		{
			name:          "no subsidy, three participants",
			cfg:           costsharing.Config{TotalCost: dec("300.00"), CompanyRatio: dec("0")},
			participants:  3,
			wantCompany:   "0",
			wantEmployee:  "300.00",
			wantPerPerson: "100.00",
			wantWithin:    true,
		},
		{
			name:          "half subsidised",
			cfg:           costsharing.Config{TotalCost: dec("300.00"), CompanyRatio: dec("50")},
			participants:  3,
			wantCompany:   "150.00",
			wantEmployee:  "150.00",
			wantPerPerson: "50.00",
			wantWithin:    true,
		},
		{
			name:          "dinner party capped by budget",
			cfg:           costsharing.Config{TotalCost: dec("500"), CompanyBudget: decPtr("200"), BudgetCapped: true},
			participants:  4,
			wantCompany:   "200.00",
			wantEmployee:  "300.00",
			wantPerPerson: "75.00",
			wantWithin:    false,
		},
		{
			name:          "budget larger than total",
			cfg:           costsharing.Config{TotalCost: dec("120"), CompanyBudget: decPtr("500"), BudgetCapped: true},
			participants:  2,
			wantCompany:   "120",
			wantEmployee:  "0",
			wantPerPerson: "0",
			wantWithin:    true,
		},
		{
			name:          "budget covers the configured ratio",
			cfg:           costsharing.Config{TotalCost: dec("500"), CompanyRatio: dec("30"), CompanyBudget: decPtr("200"), BudgetCapped: true},
			participants:  4,
			wantCompany:   "200",
			wantEmployee:  "300",
			wantPerPerson: "75",
			wantWithin:    true,
		},
		{
			name:          "budget ignored when not capped",
			cfg:           costsharing.Config{TotalCost: dec("100"), CompanyRatio: dec("10"), CompanyBudget: decPtr("5")},
			participants:  3,
			wantCompany:   "10",
			wantEmployee:  "90",
			wantPerPerson: "30",
			wantWithin:    true,
		},
		{
			name:          "no participants",
			cfg:           costsharing.Config{TotalCost: dec("80"), CompanyRatio: dec("25")},
			participants:  0,
			wantCompany:   "20",
			wantEmployee:  "60",
			wantPerPerson: "0",
			wantWithin:    true,
		},
		{
			name:          "per person rounded to cents",
			cfg:           costsharing.Config{TotalCost: dec("100"), CompanyRatio: dec("0")},
			participants:  3,
			wantCompany:   "0",
			wantEmployee:  "100",
			wantPerPerson: "33.33",
			wantWithin:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := costsharing.ComputeShares(tt.cfg, tt.participants)
			assertDecimal(t, tt.wantCompany, got.CompanyCost, "company cost")
			assertDecimal(t, tt.wantEmployee, got.EmployeeTotalCost, "employee total")
			assertDecimal(t, tt.wantPerPerson, got.PerPersonAmount, "per person")
			assert.Equal(t, tt.wantWithin, got.WithinBudget)
		})
	}
}

func TestComputeShares_Conservation(t *testing.T) {
	totals := []string{"0", "0.01", "1", "99.99", "100", "333.33", "1000.07", "12345.67"}
	ratios := []string{"0", "12.5", "33.33", "50", "99.99", "100"}
	cent := dec("0.01")

	for _, total := range totals {
		for _, ratio := range ratios {
			for n := 0; n <= 9; n++ {
				cfg := costsharing.Config{TotalCost: dec(total), CompanyRatio: dec(ratio)}
				got := costsharing.ComputeShares(cfg, n)

				require.True(t, got.CompanyCost.Add(got.EmployeeTotalCost).Equal(dec(total)),
					"company + employee must equal total for total=%s ratio=%s", total, ratio)

				if n == 0 {
					assert.True(t, got.PerPersonAmount.IsZero())
					continue
				}
				drift := got.PerPersonAmount.Mul(decimal.NewFromInt(int64(n))).Sub(got.EmployeeTotalCost).Abs()
				assert.True(t, drift.LessThanOrEqual(cent.Mul(decimal.NewFromInt(int64(n)))),
					"drift %s too large for total=%s ratio=%s n=%d", drift, total, ratio, n)
			}
		}
	}
}

func TestComputeShares_Idempotent(t *testing.T) {
	cfg := costsharing.Config{TotalCost: dec("777.77"), CompanyRatio: dec("13"), CompanyBudget: decPtr("50"), BudgetCapped: true}
	first := costsharing.ComputeShares(cfg, 7)
	second := costsharing.ComputeShares(cfg, 7)
	assert.Equal(t, first.CompanyCost.String(), second.CompanyCost.String())
	assert.Equal(t, first.EmployeeTotalCost.String(), second.EmployeeTotalCost.String())
	assert.Equal(t, first.PerPersonAmount.String(), second.PerPersonAmount.String())
	assert.Equal(t, first.WithinBudget, second.WithinBudget)
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, costsharing.ValidateConfig(costsharing.Config{TotalCost: dec("10"), CompanyRatio: dec("100")}))
	assert.ErrorIs(t, costsharing.ValidateConfig(costsharing.Config{TotalCost: dec("-1")}), apperrors.ErrValidation)
	assert.ErrorIs(t, costsharing.ValidateConfig(costsharing.Config{TotalCost: dec("1"), CompanyRatio: dec("100.01")}), apperrors.ErrValidation)
	assert.ErrorIs(t, costsharing.ValidateConfig(costsharing.Config{TotalCost: dec("1"), CompanyRatio: dec("-5")}), apperrors.ErrValidation)
	assert.ErrorIs(t, costsharing.ValidateConfig(costsharing.Config{TotalCost: dec("1"), CompanyBudget: decPtr("-0.01")}), apperrors.ErrValidation)
}

func TestAllocate(t *testing.T) {
	ones := func(n int) []decimal.Decimal {
		w := make([]decimal.Decimal, n)
		for i := range w {
			w[i] = decimal.NewFromInt(1)
		}
		return w
	}

	t.Run("even split", func(t *testing.T) {
		got, err := costsharing.Allocate(dec("300"), ones(3))
		require.NoError(t, err)
		for _, a := range got {
			assertDecimal(t, "100", a)
		}
	})

	t.Run("residue goes to the first participant", func(t *testing.T) {
		got, err := costsharing.Allocate(dec("100"), ones(3))
		require.NoError(t, err)
		assertDecimal(t, "33.34", got[0])
		assertDecimal(t, "33.33", got[1])
		assertDecimal(t, "33.33", got[2])
	})

	t.Run("leftover cents follow the largest remainders", func(t *testing.T) {
		weights := []decimal.Decimal{dec("0.01"), dec("1"), dec("1"), dec("1")}
		got, err := costsharing.Allocate(dec("0.05"), weights)
		require.NoError(t, err)
		assertDecimal(t, "0", got[0])
		assertDecimal(t, "0.02", got[1])
		assertDecimal(t, "0.02", got[2])
		assertDecimal(t, "0.01", got[3])
	})

	t.Run("tiny total over many participants never goes negative", func(t *testing.T) {
		got, err := costsharing.Allocate(dec("0.05"), ones(9))
		require.NoError(t, err)
		require.Len(t, got, 9)
		sum := decimal.Zero
		for i, a := range got {
			assert.False(t, a.IsNegative(), "amount %d is %s", i, a)
			sum = sum.Add(a)
		}
		assertDecimal(t, "0.05", sum)
		for i := 0; i < 5; i++ {
			assertDecimal(t, "0.01", got[i])
		}
		for i := 5; i < 9; i++ {
			assertDecimal(t, "0", got[i])
		}
	})

	t.Run("budget-capped dinner leaves a few cents for many guests", func(t *testing.T) {
		cfg := costsharing.Config{TotalCost: dec("500.05"), CompanyBudget: decPtr("500"), BudgetCapped: true}
		shares := costsharing.ComputeShares(cfg, 9)
		assertDecimal(t, "0.05", shares.EmployeeTotalCost)
		got, err := costsharing.Allocate(shares.EmployeeTotalCost, ones(9))
		require.NoError(t, err)
		for _, a := range got {
			assert.False(t, a.IsNegative())
		}
	})

	t.Run("weighted", func(t *testing.T) {
		got, err := costsharing.Allocate(dec("100"), []decimal.Decimal{dec("2"), dec("1"), dec("1")})
		require.NoError(t, err)
		assertDecimal(t, "50", got[0])
		assertDecimal(t, "25", got[1])
		assertDecimal(t, "25", got[2])
	})

	t.Run("rejects non-positive weights", func(t *testing.T) {
		_, err := costsharing.Allocate(dec("10"), []decimal.Decimal{dec("1"), dec("0")})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("empty", func(t *testing.T) {
		got, err := costsharing.Allocate(dec("10"), nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("sum always equals total", func(t *testing.T) {
		weightSets := [][]decimal.Decimal{
			ones(1), ones(3), ones(7), ones(11),
			{dec("1.5"), dec("1"), dec("0.5")},
			{dec("3"), dec("0.25"), dec("1"), dec("2.75")},
		}
		for _, total := range []string{"0", "0.01", "0.1", "1", "10", "99.99", "100", "1234.56"} {
			for _, w := range weightSets {
				got, err := costsharing.Allocate(dec(total), w)
				require.NoError(t, err)
				sum := decimal.Zero
				for _, a := range got {
					assert.False(t, a.IsNegative())
					sum = sum.Add(a)
				}
				assert.True(t, sum.Equal(dec(total)), "total %s, weights %v, sum %s", total, w, sum)
			}
		}
	})
}
