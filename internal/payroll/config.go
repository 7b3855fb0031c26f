package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sadopc/wagecalc/internal/attendance"
	"github.com/sadopc/wagecalc/internal/wage"
)

// Defaults used when no settings have been saved yet.
var (
	DefaultHourlyRate     = decimal.NewFromInt(13937)
	DefaultPremiumPercent = decimal.RequireFromString("0.30")
)

// Config is everything a batch needs to price its records. It is passed by
// value into each batch; nothing is read from package state.
type Config struct {
	Rates    wage.Rates
	Policy   wage.ShiftPolicy
	Holidays wage.HolidaySet
	Parse    attendance.ParseOptions
}

func DefaultConfig() Config {
	return Config{
		Rates: wage.Rates{
			Hourly:         DefaultHourlyRate,
			PremiumPercent: DefaultPremiumPercent,
			Formula:        wage.FormulaMultiplicative,
		},
		Policy: wage.DefaultPolicy(),
		Parse:  attendance.DefaultParseOptions(),
	}
}

func (c Config) Validate() error {
	if err := c.Rates.Validate(); err != nil {
		return fmt.Errorf("validate rates: %w", err)
	}
	if !c.Policy.Window.Valid() {
		return fmt.Errorf("validate policy: invalid premium window %s-%s", c.Policy.Window.Start, c.Policy.Window.End)
	}
	return nil
}
