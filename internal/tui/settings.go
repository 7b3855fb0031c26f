package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/sadopc/wagecalc/internal/export"
	"github.com/sadopc/wagecalc/internal/store"
	"github.com/sadopc/wagecalc/internal/wage"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   store.PaySettings
	loaded     bool
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	hourlyRate     *string
	premiumPercent *string
	formula        *string
	capExit        *bool
	zeroTimeUnset  *bool
	locale         *string
}

func newSettingsModel(s *store.Store) settingsModel {
	rate, pct, formula, locale := "", "", "", ""
	capExit, zero := false, false
	return settingsModel{
		store:          s,
		hourlyRate:     &rate,
		premiumPercent: &pct,
		formula:        &formula,
		capExit:        &capExit,
		zeroTimeUnset:  &zero,
		locale:         &locale,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings store.PaySettings
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ps, err := s.store.PaySettings()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Settings error: %v", err), isError: true}
		}
		return settingsDataMsg{settings: ps}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			if s.loaded {
				return s.showForm()
			}
		}
	}
	return s, nil
}

func validateAmount(v string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.hourlyRate = s.settings.HourlyRate.String()
	*s.premiumPercent = s.settings.PremiumPercent.Mul(decimal.NewFromInt(100)).String()
	*s.formula = s.settings.Formula
	*s.capExit = s.settings.CapExit
	*s.zeroTimeUnset = s.settings.ZeroTimeUnset
	*s.locale = export.LocaleFor(s.settings.Locale).Tag.String()

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Hourly rate").Value(s.hourlyRate).Validate(validateAmount),
			huh.NewInput().Title("Premium (%)").Description("Paid on hours between 20:00 and 22:00").
				Value(s.premiumPercent).Validate(validateAmount),
			huh.NewSelect[string]().Title("Premium formula").
				Options(
					huh.NewOption("Multiplicative: rate × factor × (1 + premium)", wage.FormulaMultiplicative.String()),
					huh.NewOption("Additive: rate × (factor + premium)", wage.FormulaAdditive.String()),
				).Value(s.formula),
		).Title("Pay"),
		huh.NewGroup(
			huh.NewConfirm().Title("Cap exits at 22:00").Value(s.capExit),
			huh.NewConfirm().Title("Treat 00:00 punches as missing").Value(s.zeroTimeUnset),
			huh.NewSelect[string]().Title("Language").
				Options(
					huh.NewOption("Español", "es"),
					huh.NewOption("English", "en"),
				).Value(s.locale),
		).Title("Sheet"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.save()
	}

	return s, cmd
}

// formSettings converts the form values back into PaySettings.
func (s settingsModel) formSettings() (store.PaySettings, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(*s.hourlyRate))
	if err != nil {
		return store.PaySettings{}, fmt.Errorf("hourly rate: %w", err)
	}
	pct, err := decimal.NewFromString(strings.TrimSpace(*s.premiumPercent))
	if err != nil {
		return store.PaySettings{}, fmt.Errorf("premium: %w", err)
	}
	return store.PaySettings{
		HourlyRate:     rate,
		PremiumPercent: pct.Div(decimal.NewFromInt(100)),
		Formula:        *s.formula,
		CapExit:        *s.capExit,
		ZeroTimeUnset:  *s.zeroTimeUnset,
		Locale:         *s.locale,
	}, nil
}

func (s settingsModel) save() tea.Cmd {
	return func() tea.Msg {
		ps, err := s.formSettings()
		if err == nil {
			err = s.store.SavePaySettings(ps)
		}
		if err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return statusMsg{text: fmt.Sprintf("Invalid %s", verrs[0].Field()), isError: true}
			}
			return statusMsg{text: fmt.Sprintf("Settings error: %v", err), isError: true}
		}
		return s.refresh()()
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings. Changes apply to the next sheet loaded.")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, kv := range settingRows(s.settings) {
		label := lipgloss.NewStyle().Width(32).Render(kv[0])
		rows = append(rows, fmt.Sprintf("  %s %s", label, valueStyle.Render(kv[1])))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRows(ps store.PaySettings) [][2]string {
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}
	return [][2]string{
		{"Hourly rate", export.Money(ps.HourlyRate)},
		{"Premium (20:00-22:00)", ps.PremiumPercent.Mul(decimal.NewFromInt(100)).StringFixed(0) + "%"},
		{"Premium formula", ps.Formula},
		{"Holiday factor", fmt.Sprintf("x%d", wage.HolidayFactor)},
		{"Cap exits at 22:00", yesNo(ps.CapExit)},
		{"Treat 00:00 punches as missing", yesNo(ps.ZeroTimeUnset)},
		{"Language", ps.Locale},
	}
}
