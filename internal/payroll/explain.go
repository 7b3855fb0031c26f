package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sadopc/wagecalc/internal/wage"
)

// Explanation breaks one line's pay into its parts and compares it with the
// naive hours x rate figure.
type Explanation struct {
	Employee     string
	Date         time.Time
	Entry        time.Time
	Exit         time.Time
	TotalHours   float64
	NormalHours  float64
	PremiumHours float64
	Factor       int64
	Rates        wage.Rates
	NormalPay    decimal.Decimal
	PremiumPay   decimal.Decimal
	Gross        decimal.Decimal
	Deductions   decimal.Decimal
	Final        decimal.Decimal
	Simple       decimal.Decimal
	Difference   decimal.Decimal
	HolidayBonus decimal.Decimal
	PremiumBonus decimal.Decimal
}

// Explain derives the breakdown of a computed line.
func Explain(l Line, rates wage.Rates) Explanation {
	factor := int64(1)
	if l.Holiday {
		factor = wage.HolidayFactor
	}
	total := decimal.NewFromFloat(l.Shift.Total)
	simple := total.Mul(rates.Hourly)
	base := decimal.NewFromFloat(l.Shift.Premium).Mul(rates.Hourly).Mul(decimal.NewFromInt(factor))

	return Explanation{
		Employee:     l.Record.Employee,
		Date:         l.Record.Date,
		Entry:        l.Shift.Start,
		Exit:         l.Shift.End,
		TotalHours:   l.Shift.Total,
		NormalHours:  l.Shift.Normal,
		PremiumHours: l.Shift.Premium,
		Factor:       factor,
		Rates:        rates,
		NormalPay:    l.Pay.Normal,
		PremiumPay:   l.Pay.Premium,
		Gross:        l.Pay.Gross,
		Deductions:   l.Pay.Deductions,
		Final:        l.Pay.Final,
		Simple:       simple,
		Difference:   l.Pay.Final.Sub(simple),
		HolidayBonus: simple.Mul(decimal.NewFromInt(factor - 1)),
		PremiumBonus: l.Pay.Premium.Sub(base),
	}
}

func (e Explanation) String() string {
	var b strings.Builder
	rate := e.Rates.Hourly.StringFixed(0)
	fmt.Fprintf(&b, "%s  %s\n", e.Employee, e.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "  shift        %s - %s  (%s h)\n", e.Entry.Format("15:04"), e.Exit.Format("15:04"), wage.FormatHM(e.TotalHours))
	fmt.Fprintf(&b, "  normal pay   %.2fh x %s x %d = %s\n", e.NormalHours, rate, e.Factor, e.NormalPay.StringFixed(2))
	if e.PremiumHours > 0 {
		pct := e.Rates.PremiumPercent.Mul(decimal.NewFromInt(100)).StringFixed(0)
		fmt.Fprintf(&b, "  premium pay  %.2fh x %s x %d +%s%% (%s) = %s\n",
			e.PremiumHours, rate, e.Factor, pct, e.Rates.Formula, e.PremiumPay.StringFixed(2))
	}
	fmt.Fprintf(&b, "  gross        %s\n", e.Gross.StringFixed(2))
	if !e.Deductions.IsZero() {
		fmt.Fprintf(&b, "  deductions   -%s\n", e.Deductions.StringFixed(2))
	}
	fmt.Fprintf(&b, "  final        %s\n", e.Final.StringFixed(2))
	fmt.Fprintf(&b, "  simple       %.2fh x %s = %s  (difference %s)\n",
		e.TotalHours, rate, e.Simple.StringFixed(2), e.Difference.StringFixed(2))
	if e.HolidayBonus.IsPositive() {
		fmt.Fprintf(&b, "    holiday    +%s\n", e.HolidayBonus.StringFixed(2))
	}
	if e.PremiumBonus.IsPositive() {
		fmt.Fprintf(&b, "    premium    +%s\n", e.PremiumBonus.StringFixed(2))
	}
	return b.String()
}
