package wage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// HolidayFactor multiplies every pay component on a holiday.
const HolidayFactor = 2

var (
	ErrNegativeRate    = errors.New("hourly rate must not be negative")
	ErrNegativePercent = errors.New("premium percent must not be negative")
	ErrNegativeHours   = errors.New("hours must not be negative")
)

// Formula selects how the premium surcharge combines with the holiday factor.
type Formula int

const (
	// FormulaMultiplicative pays premium hours at rate * factor * (1 + percent).
	FormulaMultiplicative Formula = iota
	// FormulaAdditive pays premium hours at rate * factor, plus an unscaled
	// surcharge of rate * percent.
	FormulaAdditive
)

func (f Formula) String() string {
	switch f {
	case FormulaAdditive:
		return "additive"
	default:
		return "multiplicative"
	}
}

// ParseFormula accepts the names produced by Formula.String.
func ParseFormula(s string) (Formula, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "multiplicative":
		return FormulaMultiplicative, nil
	case "additive":
		return FormulaAdditive, nil
	}
	return 0, fmt.Errorf("unknown premium formula %q", s)
}

// Rates holds the per-run pay parameters. PremiumPercent is a fraction:
// 0.30 means thirty percent.
type Rates struct {
	Hourly         decimal.Decimal
	PremiumPercent decimal.Decimal
	Formula        Formula
}

func (r Rates) Validate() error {
	if r.Hourly.IsNegative() {
		return ErrNegativeRate
	}
	if r.PremiumPercent.IsNegative() {
		return ErrNegativePercent
	}
	return nil
}

// Deductions are subtracted from gross pay. Zero values mean "none".
type Deductions struct {
	Inventory  decimal.Decimal
	Cash       decimal.Decimal
	Withdrawal decimal.Decimal
}

func (d Deductions) Total() decimal.Decimal {
	return d.Inventory.Add(d.Cash).Add(d.Withdrawal)
}

// PayBreakdown is the unrounded result for one record. Final may be
// negative when deductions exceed gross pay.
type PayBreakdown struct {
	Normal     decimal.Decimal
	Premium    decimal.Decimal
	Gross      decimal.Decimal
	Deductions decimal.Decimal
	Final      decimal.Decimal
}

// ComputePay prices decomposed hours.
func ComputePay(normalHours, premiumHours float64, holiday bool, r Rates, d Deductions) (PayBreakdown, error) {
	if err := r.Validate(); err != nil {
		return PayBreakdown{}, err
	}
	if normalHours < 0 || premiumHours < 0 {
		return PayBreakdown{}, ErrNegativeHours
	}

	factor := decimal.NewFromInt(1)
	if holiday {
		factor = decimal.NewFromInt(HolidayFactor)
	}
	normal := decimal.NewFromFloat(normalHours).Mul(r.Hourly).Mul(factor)

	ph := decimal.NewFromFloat(premiumHours)
	base := ph.Mul(r.Hourly).Mul(factor)
	var premium decimal.Decimal
	switch r.Formula {
	case FormulaAdditive:
		premium = base.Add(ph.Mul(r.Hourly).Mul(r.PremiumPercent))
	default:
		premium = base.Mul(decimal.NewFromInt(1).Add(r.PremiumPercent))
	}

	gross := normal.Add(premium)
	deductions := d.Total()
	return PayBreakdown{
		Normal:     normal,
		Premium:    premium,
		Gross:      gross,
		Deductions: deductions,
		Final:      gross.Sub(deductions),
	}, nil
}
