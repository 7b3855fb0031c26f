package store

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/sadopc/wagecalc/internal/attendance"
	"github.com/sadopc/wagecalc/internal/payroll"
	"github.com/sadopc/wagecalc/internal/wage"
)

const (
	keyHourlyRate     = "hourly_rate"
	keyPremiumPercent = "premium_percent"
	keyPremiumFormula = "premium_formula"
	keyCapExit        = "cap_exit"
	keyZeroTimeUnset  = "zero_time_unset"
	keyLocale         = "locale"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Decimal fields validate as their float value so numeric tags apply.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// PaySettings reads the pay settings rows.
func (s *Store) PaySettings() (PaySettings, error) {
	all, err := s.GetAllSettings()
	if err != nil {
		return PaySettings{}, err
	}
	m := make(map[string]string, len(all))
	for _, kv := range all {
		m[kv.Key] = kv.Value
	}

	var ps PaySettings
	if ps.HourlyRate, err = decimal.NewFromString(m[keyHourlyRate]); err != nil {
		return PaySettings{}, fmt.Errorf("parse setting %q: %w", keyHourlyRate, err)
	}
	if ps.PremiumPercent, err = decimal.NewFromString(m[keyPremiumPercent]); err != nil {
		return PaySettings{}, fmt.Errorf("parse setting %q: %w", keyPremiumPercent, err)
	}
	ps.Formula = m[keyPremiumFormula]
	ps.CapExit = m[keyCapExit] == "1"
	ps.ZeroTimeUnset = m[keyZeroTimeUnset] != "0"
	ps.Locale = m[keyLocale]
	return ps, nil
}

// SavePaySettings validates ps and writes every field in one transaction.
func (s *Store) SavePaySettings(ps PaySettings) error {
	if err := validate.Struct(ps); err != nil {
		return fmt.Errorf("validate pay settings: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	values := map[string]string{
		keyHourlyRate:     ps.HourlyRate.String(),
		keyPremiumPercent: ps.PremiumPercent.String(),
		keyPremiumFormula: ps.Formula,
		keyCapExit:        boolSetting(ps.CapExit),
		keyZeroTimeUnset:  boolSetting(ps.ZeroTimeUnset),
		keyLocale:         ps.Locale,
	}
	for k, v := range values {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			k, v,
		); err != nil {
			return fmt.Errorf("save setting %q: %w", k, err)
		}
	}
	return tx.Commit()
}

func boolSetting(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// PayrollConfig assembles a batch configuration from the stored settings
// and holiday calendar.
func (s *Store) PayrollConfig() (payroll.Config, error) {
	ps, err := s.PaySettings()
	if err != nil {
		return payroll.Config{}, err
	}
	if err := validate.Struct(ps); err != nil {
		return payroll.Config{}, fmt.Errorf("validate pay settings: %w", err)
	}
	formula, err := wage.ParseFormula(ps.Formula)
	if err != nil {
		return payroll.Config{}, err
	}
	holidays, err := s.HolidaySet()
	if err != nil {
		return payroll.Config{}, err
	}

	cfg := payroll.DefaultConfig()
	cfg.Rates = wage.Rates{Hourly: ps.HourlyRate, PremiumPercent: ps.PremiumPercent, Formula: formula}
	cfg.Policy.CapExit = ps.CapExit
	cfg.Holidays = holidays
	cfg.Parse = attendance.ParseOptions{ZeroTimeUnset: ps.ZeroTimeUnset, Location: cfg.Parse.Location}
	return cfg, nil
}
