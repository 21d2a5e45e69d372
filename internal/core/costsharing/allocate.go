package costsharing

import (
	"fmt"
	"sort"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Allocate splits total across weighted participants in the order given so the
// amounts sum to total exactly and none is negative.
//
// Each amount starts at floor(total * w / sum(w), 2). The leftover cents are handed
// out one at a time by largest remainder, earlier participants first on ties.
func Allocate(total decimal.Decimal, weights []decimal.Decimal) ([]decimal.Decimal, error) {
	if len(weights) == 0 {
		return nil, nil
	}
	if total.IsNegative() {
		return nil, fmt.Errorf("%w: cannot allocate a negative total", apperrors.ErrValidation)
	}

	weightSum := decimal.Zero
	for i, w := range weights {
		if !w.IsPositive() {
			return nil, fmt.Errorf("%w: weight %d must be greater than zero", apperrors.ErrValidation, i)
		}
		weightSum = weightSum.Add(w)
	}

	total = total.Round(currencyScale)
	amounts := make([]decimal.Decimal, len(weights))
	remainders := make([]decimal.Decimal, len(weights))
	allocated := decimal.Zero
	for i, w := range weights {
		exact := total.Mul(w).Div(weightSum)
		amounts[i] = exact.RoundFloor(currencyScale)
		remainders[i] = exact.Sub(amounts[i])
		allocated = allocated.Add(amounts[i])
	}

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})

	// Flooring leaves fewer than len(weights) cents over.
	leftover := total.Sub(allocated).Div(cent).IntPart()
	for k := int64(0); k < leftover; k++ {
		i := order[int(k)%len(order)]
		amounts[i] = amounts[i].Add(cent)
	}
	return amounts, nil
}

var cent = decimal.New(1, -currencyScale)

// SumWeights adds up weights.
func SumWeights(weights []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	return sum
}
