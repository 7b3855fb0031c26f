package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/wagecalc/internal/export"
	"github.com/sadopc/wagecalc/internal/store"
)

type exportFormat int

const (
	exportCSV exportFormat = iota
	exportJSON
	exportXLSX
	exportTemplate
)

var exportNames = []string{"CSV", "JSON", "Excel (xlsx)", "Blank input template (xlsx)"}

// App is the root Bubble Tea model.
type App struct {
	store   *store.Store
	log     *zap.Logger
	session *session
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	report    reportModel
	reconcile reconcileModel
	holidays  holidaysModel
	settings  settingsModel

	help   help.Model
	status string
}

// NewApp builds the root model. A non-empty locale overrides the stored one.
func NewApp(s *store.Store, log *zap.Logger, locale string) App {
	if log == nil {
		log = zap.NewNop()
	}
	h := help.New()
	h.ShowAll = false

	sess := &session{}
	return App{
		store:      s,
		log:        log,
		session:    sess,
		activeView: viewPayroll,
		report:     newReportModel(s, log, locale, sess),
		reconcile:  newReconcileModel(sess),
		holidays:   newHolidaysModel(s),
		settings:   newSettingsModel(s),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.holidays.refresh(),
		a.settings.refresh(),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.report.setSize(a.width, contentHeight)
		a.reconcile.setSize(a.width, contentHeight)
		a.holidays.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewPayroll
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewReconcile
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewHolidays
			return a, a.holidays.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case batchLoadedMsg:
		a.session.path = msg.path
		a.session.batch = msg.batch
		a.session.locale = msg.locale
		a.session.report = msg.batch.Compute()
		a.report.reset()
		a.reconcile.reset()
		if !a.session.report.Ready() {
			a.activeView = viewReconcile
			a.status = fmt.Sprintf("%d record(s) need corrections", len(a.session.report.Pending))
			return a, nil
		}
		a.activeView = viewPayroll
		a.status = "Loaded " + filepath.Base(msg.path)
		return a, nil

	case reportReadyMsg:
		a.report.reset()
		a.activeView = viewPayroll
		a.status = "All corrections supplied, payroll computed"
		return a, nil

	case statusMsg:
		a.status = msg.text
		if msg.isError {
			a.log.Warn("tui", zap.String("status", msg.text))
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil

	case holidaysDataMsg:
		var cmd tea.Cmd
		a.holidays, cmd = a.holidays.update(msg)
		return a, cmd

	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewPayroll:
		a.report, cmd = a.report.update(msg)
	case viewReconcile:
		a.reconcile, cmd = a.reconcile.update(msg)
	case viewHolidays:
		a.holidays, cmd = a.holidays.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewPayroll:
		return a.report.formActive
	case viewReconcile:
		return a.reconcile.formActive
	case viewHolidays:
		return a.holidays.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewHolidays:
		return a.holidays.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewPayroll:
		content = a.report.view()
	case viewReconcile:
		content = a.reconcile.view()
	case viewHolidays:
		content = a.holidays.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("wagecalc")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Batch indicator in footer
	batchInfo := ""
	switch {
	case a.session.ready():
		batchInfo = readyStyle.Render(" ● " + export.Money(a.session.report.Totals.Pay))
	case a.session.loaded():
		batchInfo = pendingStyle.Render(fmt.Sprintf(" ● %d pending", len(a.session.report.Pending)))
	}

	left := footerStyle.Render(helpView)
	right := batchInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportNames {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		if exportFormat(i) != exportTemplate && !a.session.ready() {
			style = mutedStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportNames)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormat(a.exportCursor))
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// exportLocale prefers the locale the batch was loaded with.
func (a App) exportLocale() export.Locale {
	if a.session.loaded() {
		return a.session.locale
	}
	if a.report.locale != "" {
		return export.LocaleFor(a.report.locale)
	}
	ps, err := a.store.PaySettings()
	if err != nil {
		return export.LocaleFor("")
	}
	return export.LocaleFor(ps.Locale)
}

func (a App) doExport(format exportFormat) tea.Cmd {
	rep := a.session.report
	ready := a.session.ready()
	loc := a.exportLocale()

	return func() tea.Msg {
		if format != exportTemplate && !ready {
			return statusMsg{text: "Nothing to export: load a sheet and supply every correction first", isError: true}
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		var err error
		switch format {
		case exportCSV:
			path = filepath.Join(home, fmt.Sprintf("wagecalc-%s.csv", dateStr))
			err = export.ToCSV(rep, loc, path)
		case exportJSON:
			path = filepath.Join(home, fmt.Sprintf("wagecalc-%s.json", dateStr))
			err = export.ToJSON(rep, loc, path)
		case exportXLSX:
			path = filepath.Join(home, fmt.Sprintf("wagecalc-%s.xlsx", dateStr))
			err = export.ToXLSX(rep, loc, path)
		case exportTemplate:
			path = filepath.Join(home, "wagecalc-template.xlsx")
			err = export.Template(loc, path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
