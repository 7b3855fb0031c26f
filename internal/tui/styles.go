package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#3A86FF")
	colorPay     = lipgloss.Color("#2A9D8F")
	colorPending = lipgloss.Color("#E9C46A")
	colorLoss    = lipgloss.Color("#E76F51")
	colorHoliday = lipgloss.Color("#F4A261")
	colorText    = lipgloss.Color("#D8DEE9")
	colorMuted   = lipgloss.Color("#6B7280")
	colorBorder  = lipgloss.Color("#3B4252")
	colorDetail  = lipgloss.Color("#88C0D0")
)

// barColors cycle across employees in the pay chart.
var barColors = []lipgloss.Color{colorPrimary, colorPay, colorHoliday, colorDetail, colorPending, colorLoss}

// Layout
var (
	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 2)

	panelStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(1, 2)
	activePanelStyle = panelStyle.BorderForeground(colorPrimary)
)

// Text
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle = lipgloss.NewStyle().Foreground(colorDetail)

	normalItemStyle   = lipgloss.NewStyle().Foreground(colorText)
	selectedItemStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Payroll states
var (
	readyStyle    = lipgloss.NewStyle().Foreground(colorPay)
	pendingStyle  = lipgloss.NewStyle().Foreground(colorPending)
	skippedStyle  = lipgloss.NewStyle().Foreground(colorLoss)
	totalStyle    = readyStyle.Bold(true)
	negativeStyle = skippedStyle.Bold(true)
	explainStyle  = lipgloss.NewStyle().Foreground(colorDetail).PaddingLeft(2)
)
