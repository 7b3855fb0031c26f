package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/wagecalc/internal/attendance"
	"github.com/sadopc/wagecalc/internal/reconcile"
	"github.com/sadopc/wagecalc/internal/wage"
)

// reconcileModel lists the partial records of the loaded sheet and collects
// the missing punches one record at a time.
type reconcileModel struct {
	session *session
	width   int
	height  int

	cursor int

	formActive bool
	form       *huh.Form
	editingRow int

	// Form values as pointers (survive value copies)
	formEntry *string
	formExit  *string
}

func newReconcileModel(sess *session) reconcileModel {
	entry, exit := "", ""
	return reconcileModel{
		session:   sess,
		formEntry: &entry,
		formExit:  &exit,
	}
}

func (m *reconcileModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *reconcileModel) reset() {
	m.cursor = 0
	m.formActive = false
	m.form = nil
}

func (m reconcileModel) items() []reconcile.Item {
	if !m.session.loaded() {
		return nil
	}
	return m.session.batch.Items()
}

func (m reconcileModel) update(msg tea.Msg) (reconcileModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		items := m.items()
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(items)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if m.cursor < len(items) {
				return m.showForm(items[m.cursor])
			}
		}
	}
	return m, nil
}

func validateClock(s string) error {
	_, err := wage.ParseTimeOfDay(s)
	return err
}

func (m reconcileModel) showForm(it reconcile.Item) (reconcileModel, tea.Cmd) {
	// Corrected records stay editable until the batch is computed.
	if it.State != reconcile.AwaitingCorrection && it.State != reconcile.Corrected {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Row %d is %s", it.Record.Row, it.State)}
		}
	}

	*m.formEntry = ""
	*m.formExit = ""
	if it.Correction.Entry != nil {
		*m.formEntry = it.Correction.Entry.String()
	}
	if it.Correction.Exit != nil {
		*m.formExit = it.Correction.Exit.String()
	}
	m.editingRow = it.Record.Row

	var fields []huh.Field
	for _, f := range it.Missing {
		switch f {
		case attendance.FieldEntry:
			fields = append(fields, huh.NewInput().Title("Entry").Placeholder("08:00").Value(m.formEntry).Validate(validateClock))
		case attendance.FieldExit:
			fields = append(fields, huh.NewInput().Title("Exit").Placeholder("17:00").Value(m.formExit).Validate(validateClock))
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(fields...).
			Title(fmt.Sprintf("%s  %s", it.Record.Employee, it.Record.Date.Format("2006-01-02"))).
			Description(knownPunch(it.Record)),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func knownPunch(rec attendance.DailyRecord) string {
	switch {
	case rec.Entry != nil:
		return "Entry recorded at " + rec.Entry.Format("15:04")
	case rec.Exit != nil:
		return "Exit recorded at " + rec.Exit.Format("15:04")
	}
	return ""
}

func (m reconcileModel) updateForm(msg tea.Msg) (reconcileModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		return m, m.supply()
	}

	return m, cmd
}

func (m reconcileModel) correction() (reconcile.Correction, error) {
	var c reconcile.Correction
	if s := strings.TrimSpace(*m.formEntry); s != "" {
		t, err := wage.ParseTimeOfDay(s)
		if err != nil {
			return c, err
		}
		c.Entry = &t
	}
	if s := strings.TrimSpace(*m.formExit); s != "" {
		t, err := wage.ParseTimeOfDay(s)
		if err != nil {
			return c, err
		}
		c.Exit = &t
	}
	return c, nil
}

// supply hands the correction to the batch. Once nothing is pending the
// report is computed and the app is told to show it.
func (m reconcileModel) supply() tea.Cmd {
	c, err := m.correction()
	if err != nil {
		return func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Correction error: %v", err), isError: true}
		}
	}
	b := m.session.batch
	if _, err := b.Supply(m.editingRow, c); err != nil {
		return func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Correction error: %v", err), isError: true}
		}
	}

	if len(b.Pending()) > 0 {
		row, left := m.editingRow, len(b.Pending())
		return func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Row %d corrected, %d left", row, left)}
		}
	}
	m.session.report = b.Compute()
	return func() tea.Msg { return reportReadyMsg{} }
}

func (m reconcileModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("Reconcile")

	if m.formActive && m.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(fmt.Sprintf("Correct Row %d", m.editingRow)), "", m.form.View()),
		)
	}

	if !m.session.loaded() {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No sheet loaded. Press 1, then o to open one."),
		))
	}

	items := m.items()
	if len(items) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", readyStyle.Render("Every record has both punches."),
		))
	}

	var rows []string
	pending := len(m.session.batch.Pending())
	if pending > 0 {
		rows = append(rows, title+"  "+pendingStyle.Render(fmt.Sprintf("%d pending", pending)))
	} else {
		rows = append(rows, title+"  "+readyStyle.Render("all corrected"))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-5s %-18s %-10s %-6s %-6s %-12s %s",
		"Row", "Employee", "Date", "In", "Out", "Missing", "State")))

	for i, it := range items {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rec := it.Patched()
		missing := make([]string, len(it.Missing))
		for j, f := range it.Missing {
			missing[j] = string(f)
		}
		state := stateStyle(it.State).Render(it.State.String())
		rows = append(rows, style.Render(fmt.Sprintf("%s%-5d %-18s %-10s %-6s %-6s %-12s ",
			cursor, rec.Row, truncate(rec.Employee, 18), rec.Date.Format("2006-01-02"),
			punch(rec.Entry, it.Correction.Entry != nil), punch(rec.Exit, it.Correction.Exit != nil),
			strings.Join(missing, ","),
		))+state)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: supply missing punches  * supplied by hand"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func punch(t *time.Time, supplied bool) string {
	if t == nil {
		return "--:--"
	}
	s := t.Format("15:04")
	if supplied {
		s += "*"
	}
	return s
}

func stateStyle(s reconcile.State) lipgloss.Style {
	switch s {
	case reconcile.AwaitingCorrection:
		return pendingStyle
	case reconcile.Corrected, reconcile.Computed:
		return readyStyle
	}
	return mutedStyle
}
