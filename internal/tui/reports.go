package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/wagecalc/internal/export"
	"github.com/sadopc/wagecalc/internal/ingest"
	"github.com/sadopc/wagecalc/internal/payroll"
	"github.com/sadopc/wagecalc/internal/store"
	"github.com/sadopc/wagecalc/internal/wage"
)

// reportModel is the payroll view: the loaded sheet, its computed lines and
// a bar chart of final pay per employee.
type reportModel struct {
	store   *store.Store
	log     *zap.Logger
	locale  string
	session *session
	width   int
	height  int

	cursor  int
	explain bool
	chart   barchart.Model

	formActive bool
	form       *huh.Form
	formPath   *string
}

func newReportModel(s *store.Store, log *zap.Logger, locale string, sess *session) reportModel {
	path := ""
	return reportModel{
		store:    s,
		log:      log,
		locale:   locale,
		session:  sess,
		chart:    barchart.New(60, 12),
		formPath: &path,
	}
}

func (r *reportModel) setSize(w, h int) {
	r.width = w
	r.height = h
	if r.session.ready() {
		r.buildChart()
	}
}

// loadBatch reads path and builds a batch from the stored settings and
// holiday calendar.
func (r reportModel) loadBatch(path string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := r.store.PayrollConfig()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Settings error: %v", err), isError: true}
		}
		tag := r.locale
		if tag == "" {
			ps, err := r.store.PaySettings()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Settings error: %v", err), isError: true}
			}
			tag = ps.Locale
		}

		header, rows, err := ingest.Load(path)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Read error: %v", err), isError: true}
		}
		b, err := payroll.NewBatch(header, rows, cfg, r.log)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Sheet error: %v", err), isError: true}
		}
		return batchLoadedMsg{path: path, batch: b, locale: export.LocaleFor(tag)}
	}
}

// reset is called once a new report is in the session.
func (r *reportModel) reset() {
	r.cursor = 0
	r.explain = false
	if r.session.ready() {
		r.buildChart()
	}
}

func (r reportModel) update(msg tea.Msg) (reportModel, tea.Cmd) {
	if r.formActive && r.form != nil {
		return r.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Open):
			return r.showOpenForm()
		case key.Matches(msg, keys.Reload):
			if r.session.loaded() {
				return r, r.loadBatch(r.session.path)
			}
		case key.Matches(msg, keys.Up):
			if r.cursor > 0 {
				r.cursor--
			}
		case key.Matches(msg, keys.Down):
			if r.session.ready() && r.cursor < len(r.session.report.Lines)-1 {
				r.cursor++
			}
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Explain):
			if r.session.ready() && len(r.session.report.Lines) > 0 {
				r.explain = !r.explain
			}
		case key.Matches(msg, keys.Back):
			r.explain = false
		}
	}
	return r, nil
}

func (r reportModel) showOpenForm() (reportModel, tea.Cmd) {
	*r.formPath = r.session.path

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Attendance sheet").
				Description(strings.Join(ingest.Formats, " ")).
				Placeholder("~/asistencia.xlsx").
				Value(r.formPath).
				Validate(validateSheetPath),
		),
	).WithShowHelp(true).WithShowErrors(true)

	r.formActive = true
	return r, r.form.Init()
}

func validateSheetPath(s string) error {
	path := expandHome(s)
	if path == "" {
		return fmt.Errorf("path is required")
	}
	if !slices.Contains(ingest.Formats, strings.ToLower(filepath.Ext(path))) {
		return fmt.Errorf("expected one of %s", strings.Join(ingest.Formats, ", "))
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot open %s", filepath.Base(path))
	}
	return nil
}

func (r reportModel) updateForm(msg tea.Msg) (reportModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			r.formActive = false
			r.form = nil
			return r, nil
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted {
		r.formActive = false
		r.form = nil
		return r, r.loadBatch(expandHome(*r.formPath))
	}

	return r, cmd
}

// employeeTotals sums final pay per employee in first-seen order.
func employeeTotals(lines []payroll.Line) ([]string, map[string]float64) {
	var names []string
	totals := make(map[string]float64)
	for _, l := range lines {
		if _, ok := totals[l.Record.Employee]; !ok {
			names = append(names, l.Record.Employee)
		}
		f, _ := l.Pay.Final.Float64()
		totals[l.Record.Employee] += f
	}
	return names, totals
}

func (r *reportModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 40 {
		chartHeight = 14
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	names, totals := employeeTotals(r.session.report.Lines)
	var bars []barchart.BarData
	for i, name := range names {
		style := lipgloss.NewStyle().Foreground(barColors[i%len(barColors)])
		bars = append(bars, barchart.BarData{
			Label: truncate(name, 10),
			Values: []barchart.BarValue{{
				Name: name,
				// Bars cannot go below the axis; negative pay shows in the table.
				Value: max(totals[name], 0),
				Style: style,
			}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportModel) view() string {
	w := r.width - 4

	if r.formActive && r.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Open Sheet"), "", r.form.View()),
		)
	}

	if !r.session.loaded() {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Payroll"),
			"",
			mutedStyle.Render("No sheet loaded. Press o to open an attendance sheet (xlsx, xls, csv)."),
		))
	}

	title := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Payroll"), "  ", mutedStyle.Render(filepath.Base(r.session.path)),
	)

	if !r.session.report.Ready() {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			pendingStyle.Render(fmt.Sprintf("%d record(s) need corrections before pay can be computed.", len(r.session.report.Pending))),
			mutedStyle.Render("Press 2 to reconcile them."),
		))
	}

	sections := []string{title, "", r.chart.View(), "", r.renderTable(w)}
	if notes := r.renderNotes(); notes != "" {
		sections = append(sections, "", notes)
	}
	if r.explain && r.cursor < len(r.session.report.Lines) {
		rates := r.session.batch.Config().Rates
		sections = append(sections, "", explainStyle.Render(payroll.Explain(r.session.report.Lines[r.cursor], rates).String()))
	}
	sections = append(sections, "", mutedStyle.Render("  o: open  r: reload  enter: breakdown  e: export"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// visibleRange keeps the cursor on screen when the table is taller than the
// space left under the chart.
func (r reportModel) visibleRange(n int) (int, int) {
	rows := r.height - 24
	if rows < 5 {
		rows = 5
	}
	if n <= rows {
		return 0, n
	}
	start := r.cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}

func (r reportModel) renderTable(w int) string {
	rep := r.session.report
	if len(rep.Lines) == 0 {
		return mutedStyle.Render("  No records to pay")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-18s %-10s %-5s %-5s %-4s %6s %6s %14s",
		"Employee", "Date", "In", "Out", "Hol", "Hours", "Prem", "Final")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 78))))

	start, end := r.visibleRange(len(rep.Lines))
	for i := start; i < end; i++ {
		l := rep.Lines[i]
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := ""
		if l.Corrected {
			mark = "*"
		}
		row := style.Render(fmt.Sprintf("%s%-18s %-10s %-5s %-5s %-4s %6s %6.2f ",
			cursor,
			truncate(l.Record.Employee+mark, 18),
			l.Record.Date.Format("2006-01-02"),
			l.Record.Entry.Format("15:04"),
			l.Record.Exit.Format("15:04"),
			r.session.locale.YesNo(l.Holiday),
			wage.FormatHM(l.Shift.Total),
			l.Shift.Premium,
		))
		final := fmt.Sprintf("%14s", export.Money(l.Pay.Final))
		if l.Pay.Final.IsNegative() {
			final = negativeStyle.Render(final)
		}
		rows = append(rows, row+final)
	}

	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 78))))
	rows = append(rows, totalStyle.Render(fmt.Sprintf("  %-18s %-10s %-5s %-5s %-4s %6s %6.2f %14s",
		fmt.Sprintf("TOTAL (%d)", rep.Totals.Records), "", "", "", "",
		wage.FormatHM(rep.Totals.Hours), rep.Totals.PremiumHours, export.Money(rep.Totals.Pay))))

	return strings.Join(rows, "\n")
}

func (r reportModel) renderNotes() string {
	rep := r.session.report
	var notes []string
	if n := len(rep.Excluded); n > 0 {
		notes = append(notes, mutedStyle.Render(fmt.Sprintf("  %d record(s) without punches excluded", n)))
	}
	for _, err := range rep.Skipped {
		notes = append(notes, skippedStyle.Render("  skipped: "+err.Error()))
	}
	if slices.ContainsFunc(rep.Lines, func(l payroll.Line) bool { return l.Corrected }) {
		notes = append(notes, mutedStyle.Render("  * corrected by hand"))
	}
	return strings.Join(notes, "\n")
}
