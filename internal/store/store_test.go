package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/sadopc/wagecalc/internal/wage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/wagecalc.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddHoliday(day(2024, time.December, 25), "Navidad"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migration does not run twice.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	holidays, err := s2.ListHolidays()
	if err != nil {
		t.Fatal(err)
	}
	if len(holidays) != 1 {
		t.Fatalf("expected 1 holiday after reopen, got %d", len(holidays))
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		"hourly_rate":     "13937",
		"premium_percent": "0.30",
		"premium_formula": "multiplicative",
		"cap_exit":        "0",
		"zero_time_unset": "1",
		"locale":          "es",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("key", "v1")
	s.SetSetting("key", "v2")
	val, _ := s.GetSetting("key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 6 {
		t.Fatalf("expected 6 default settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

// ============================================================
// Pay settings
// ============================================================

func TestPaySettingsDefaults(t *testing.T) {
	s := newTestStore(t)
	ps, err := s.PaySettings()
	if err != nil {
		t.Fatal(err)
	}
	if !ps.HourlyRate.Equal(decimal.NewFromInt(13937)) {
		t.Fatalf("rate = %s", ps.HourlyRate)
	}
	if !ps.PremiumPercent.Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("percent = %s", ps.PremiumPercent)
	}
	if ps.Formula != "multiplicative" || ps.CapExit || !ps.ZeroTimeUnset || ps.Locale != "es" {
		t.Fatalf("unexpected defaults %+v", ps)
	}
}

func TestSavePaySettings(t *testing.T) {
	s := newTestStore(t)
	want := PaySettings{
		HourlyRate:     decimal.RequireFromString("15000.50"),
		PremiumPercent: decimal.RequireFromString("0.5"),
		Formula:        "additive",
		CapExit:        true,
		ZeroTimeUnset:  false,
		Locale:         "en-US",
	}
	if err := s.SavePaySettings(want); err != nil {
		t.Fatalf("SavePaySettings: %v", err)
	}

	got, err := s.PaySettings()
	if err != nil {
		t.Fatal(err)
	}
	if !got.HourlyRate.Equal(want.HourlyRate) || !got.PremiumPercent.Equal(want.PremiumPercent) {
		t.Fatalf("rates = %s / %s", got.HourlyRate, got.PremiumPercent)
	}
	if got.Formula != "additive" || !got.CapExit || got.ZeroTimeUnset || got.Locale != "en-US" {
		t.Fatalf("unexpected settings %+v", got)
	}
}

func TestSavePaySettingsValidation(t *testing.T) {
	base := PaySettings{
		HourlyRate:     decimal.NewFromInt(10000),
		PremiumPercent: decimal.RequireFromString("0.3"),
		Formula:        "multiplicative",
		Locale:         "es",
	}

	tests := []struct {
		name   string
		mutate func(*PaySettings)
		field  string
	}{
		{"negative rate", func(p *PaySettings) { p.HourlyRate = decimal.NewFromInt(-1) }, "HourlyRate"},
		{"negative percent", func(p *PaySettings) { p.PremiumPercent = decimal.RequireFromString("-0.1") }, "PremiumPercent"},
		{"unknown formula", func(p *PaySettings) { p.Formula = "compound" }, "Formula"},
		{"empty locale", func(p *PaySettings) { p.Locale = "" }, "Locale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			ps := base
			tt.mutate(&ps)

			err := s.SavePaySettings(ps)
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected validation errors, got %v", err)
			}
			if verrs[0].Field() != tt.field {
				t.Fatalf("failed field = %s, want %s", verrs[0].Field(), tt.field)
			}

			// Nothing was written.
			val, _ := s.GetSetting("hourly_rate")
			if val != "13937" {
				t.Fatalf("hourly_rate changed to %s", val)
			}
		})
	}
}

func TestSavePaySettingsLargePremium(t *testing.T) {
	s := newTestStore(t)
	ps := PaySettings{
		HourlyRate:     decimal.NewFromInt(10000),
		PremiumPercent: decimal.RequireFromString("2.5"),
		Formula:        "additive",
		Locale:         "es",
	}
	if err := s.SavePaySettings(ps); err != nil {
		t.Fatalf("SavePaySettings: %v", err)
	}
	got, err := s.PaySettings()
	if err != nil {
		t.Fatalf("PaySettings: %v", err)
	}
	if !got.PremiumPercent.Equal(ps.PremiumPercent) {
		t.Fatalf("premium percent = %s, want 2.5", got.PremiumPercent)
	}
}

// ============================================================
// Holidays
// ============================================================

func TestAddAndListHolidays(t *testing.T) {
	s := newTestStore(t)

	s.AddHoliday(day(2024, time.December, 25), "Navidad")
	s.AddHoliday(day(2024, time.January, 1), "")
	// Same date again renames instead of duplicating.
	if err := s.AddHoliday(day(2024, time.January, 1), "Año Nuevo"); err != nil {
		t.Fatal(err)
	}

	holidays, err := s.ListHolidays()
	if err != nil {
		t.Fatal(err)
	}
	if len(holidays) != 2 {
		t.Fatalf("expected 2 holidays, got %d", len(holidays))
	}
	if !holidays[0].Date.Equal(day(2024, time.January, 1)) || holidays[0].Name != "Año Nuevo" {
		t.Fatalf("first holiday = %+v", holidays[0])
	}
	if holidays[1].Name != "Navidad" {
		t.Fatalf("second holiday = %+v", holidays[1])
	}
	if holidays[0].CreatedAt.IsZero() {
		t.Fatal("created_at should be set")
	}
}

func TestRemoveHoliday(t *testing.T) {
	s := newTestStore(t)
	s.AddHoliday(day(2024, time.May, 1), "")

	if err := s.RemoveHoliday(day(2024, time.May, 1)); err != nil {
		t.Fatal(err)
	}
	err := s.RemoveHoliday(day(2024, time.May, 1))
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestHolidaySetMatchesFullDate(t *testing.T) {
	s := newTestStore(t)
	s.AddHoliday(day(2024, time.September, 18), "Fiestas Patrias")

	set, err := s.HolidaySet()
	if err != nil {
		t.Fatal(err)
	}
	if !set.Contains(day(2024, time.September, 18)) {
		t.Fatal("expected 2024-09-18 to be a holiday")
	}
	if set.Contains(day(2024, time.October, 18)) {
		t.Fatal("same day of another month must not match")
	}
	if set.Contains(day(2023, time.September, 18)) {
		t.Fatal("same date of another year must not match")
	}
}

// ============================================================
// Payroll configuration
// ============================================================

func TestPayrollConfig(t *testing.T) {
	s := newTestStore(t)
	s.AddHoliday(day(2024, time.March, 6), "")
	if err := s.SavePaySettings(PaySettings{
		HourlyRate:     decimal.NewFromInt(10000),
		PremiumPercent: decimal.RequireFromString("0.3"),
		Formula:        "additive",
		CapExit:        true,
		ZeroTimeUnset:  true,
		Locale:         "es",
	}); err != nil {
		t.Fatal(err)
	}

	cfg, err := s.PayrollConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Rates.Formula != wage.FormulaAdditive {
		t.Fatalf("formula = %s", cfg.Rates.Formula)
	}
	if !cfg.Rates.Hourly.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("rate = %s", cfg.Rates.Hourly)
	}
	if !cfg.Policy.CapExit || cfg.Policy.Window != wage.PremiumWindow {
		t.Fatalf("policy = %+v", cfg.Policy)
	}
	if !cfg.Holidays.Contains(day(2024, time.March, 6)) {
		t.Fatal("holiday calendar not loaded")
	}
	if !cfg.Parse.ZeroTimeUnset || cfg.Parse.Location == nil {
		t.Fatalf("parse options = %+v", cfg.Parse)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestPayrollConfigRejectsCorruptSettings(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("premium_percent", "lots")
	if _, err := s.PayrollConfig(); err == nil {
		t.Fatal("expected error for unparseable percent")
	}
}

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
}
