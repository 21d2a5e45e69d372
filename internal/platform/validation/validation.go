// Package validation registers the money-related binding tags on gin's validator.
package validation

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	registerOnce sync.Once
	registerErr  error
	hundred      = decimal.NewFromInt(100)
)

// Register installs the custom tags once per process:
//
//	money        positive, at most two decimal places
//	money_nonneg zero or positive, at most two decimal places
//	percent      between 0 and 100 inclusive
//	ratio        strictly positive
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

// RegisterOn installs the custom tags on v.
func RegisterOn(v *validator.Validate) error {
	tags := map[string]validator.Func{
		"money":        validateMoney,
		"money_nonneg": validateMoneyNonNeg,
		"percent":      validatePercent,
		"ratio":        validateRatio,
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func decimalField(fl validator.FieldLevel) (decimal.Decimal, bool) {
	switch d := fl.Field().Interface().(type) {
	case decimal.Decimal:
		return d, true
	case *decimal.Decimal:
		if d == nil {
			return decimal.Decimal{}, false
		}
		return *d, true
	}
	return decimal.Decimal{}, false
}

func hasCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

func validateMoney(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	return ok && d.IsPositive() && hasCents(d)
}

func validateMoneyNonNeg(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	return ok && !d.IsNegative() && hasCents(d)
}

func validatePercent(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	return ok && !d.IsNegative() && d.LessThanOrEqual(hundred)
}

func validateRatio(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	return ok && d.IsPositive()
}
