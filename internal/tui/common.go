package tui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sadopc/wagecalc/internal/export"
	"github.com/sadopc/wagecalc/internal/payroll"
)

// viewState represents the currently active view.
type viewState int

const (
	viewPayroll viewState = iota
	viewReconcile
	viewHolidays
	viewSettings
)

var viewNames = []string{"Payroll", "Reconcile", "Holidays", "Settings"}

// session is the sheet currently loaded. Views share it by pointer so a
// correction made in one view is seen by the others.
type session struct {
	path   string
	batch  *payroll.Batch
	report payroll.Report
	locale export.Locale
}

func (s *session) loaded() bool { return s.batch != nil }

func (s *session) ready() bool { return s.loaded() && s.report.Ready() }

// --- Messages ---

type batchLoadedMsg struct {
	path   string
	batch  *payroll.Batch
	locale export.Locale
}

// reportReadyMsg follows the last correction of a batch.
type reportReadyMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// expandHome resolves a leading ~ in user-typed paths.
func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
