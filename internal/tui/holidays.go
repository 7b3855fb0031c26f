package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/wagecalc/internal/store"
)

const dateLayout = "2006-01-02"

type holidaysModel struct {
	store  *store.Store
	width  int
	height int

	holidays []store.Holiday
	cursor   int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formDate *string
	formName *string
}

func newHolidaysModel(s *store.Store) holidaysModel {
	date, name := "", ""
	return holidaysModel{
		store:    s,
		formDate: &date,
		formName: &name,
	}
}

func (h *holidaysModel) setSize(w, hgt int) {
	h.width = w
	h.height = hgt
}

type holidaysDataMsg struct {
	holidays []store.Holiday
}

func (h holidaysModel) refresh() tea.Cmd {
	return func() tea.Msg {
		holidays, err := h.store.ListHolidays()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Holiday error: %v", err), isError: true}
		}
		return holidaysDataMsg{holidays: holidays}
	}
}

func (h holidaysModel) update(msg tea.Msg) (holidaysModel, tea.Cmd) {
	if h.formActive && h.form != nil {
		return h.updateForm(msg)
	}

	switch msg := msg.(type) {
	case holidaysDataMsg:
		h.holidays = msg.holidays
		if h.cursor >= len(h.holidays) {
			h.cursor = max(0, len(h.holidays)-1)
		}
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(h.holidays)-1 {
				h.cursor++
			}
		case key.Matches(msg, keys.New):
			return h.showForm()
		case key.Matches(msg, keys.Delete):
			if len(h.holidays) > 0 {
				return h, h.remove(h.holidays[h.cursor].Date)
			}
		}
	}
	return h, nil
}

func validateDate(s string) error {
	if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func (h holidaysModel) showForm() (holidaysModel, tea.Cmd) {
	*h.formDate = ""
	*h.formName = ""

	h.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Date").Placeholder("2024-09-18").Value(h.formDate).Validate(validateDate),
			huh.NewInput().Title("Name").Value(h.formName),
		),
	).WithShowHelp(true).WithShowErrors(true)

	h.formActive = true
	return h, h.form.Init()
}

func (h holidaysModel) updateForm(msg tea.Msg) (holidaysModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			h.formActive = false
			h.form = nil
			return h, nil
		}
	}

	form, cmd := h.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.form = f
	}

	if h.form.State == huh.StateCompleted {
		h.formActive = false
		h.form = nil
		date, _ := time.Parse(dateLayout, strings.TrimSpace(*h.formDate))
		return h, h.add(date, strings.TrimSpace(*h.formName))
	}

	return h, cmd
}

func (h holidaysModel) add(date time.Time, name string) tea.Cmd {
	return func() tea.Msg {
		if err := h.store.AddHoliday(date, name); err != nil {
			return statusMsg{text: fmt.Sprintf("Holiday error: %v", err), isError: true}
		}
		return h.refresh()()
	}
}

func (h holidaysModel) remove(date time.Time) tea.Cmd {
	return func() tea.Msg {
		if err := h.store.RemoveHoliday(date); err != nil {
			return statusMsg{text: fmt.Sprintf("Holiday error: %v", err), isError: true}
		}
		return h.refresh()()
	}
}

func (h holidaysModel) view() string {
	w := h.width - 4

	if h.formActive && h.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Holiday"), "", h.form.View()),
		)
	}

	title := titleStyle.Render("Holidays")
	hint := mutedStyle.Render("  n: new  d: delete  (applies to the next sheet loaded)")

	if len(h.holidays) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No holidays yet. Press n to add one."), "", hint,
		))
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-10s %s", "Date", "Day", "Name")))

	for i, hol := range h.holidays {
		cursor := "  "
		style := normalItemStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-12s %-10s %s",
			cursor, hol.Date.Format(dateLayout), hol.Date.Format("Monday"), hol.Name)))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
