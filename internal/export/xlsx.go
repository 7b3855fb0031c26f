package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/wagecalc/internal/attendance"
	"github.com/sadopc/wagecalc/internal/payroll"
	"github.com/sadopc/wagecalc/internal/wage"
)

const (
	reportSheet   = "Payroll"
	templateSheet = "Attendance"
)

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

// ToXLSX writes the report as a single-sheet workbook. Hours and money are
// stored as numbers so the sheet can be summed again.
func ToXLSX(r payroll.Report, loc Locale, path string) error {
	if !r.Ready() {
		return ErrNotReady
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), reportSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	style, err := headerStyle(f)
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(reportSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(reportSheet, "A1", cellName(len(Columns), 1), style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	row := 2
	for _, l := range r.Lines {
		final, _ := l.Pay.Final.Round(2).Float64()
		inv, _ := l.Record.Deductions.Inventory.Float64()
		cash, _ := l.Record.Deductions.Cash.Float64()
		wd, _ := l.Record.Deductions.Withdrawal.Float64()
		values := []interface{}{
			l.Record.Employee,
			l.Record.Date.Format("2006-01-02"),
			clockField(l.Record.Entry),
			clockField(l.Record.Exit),
			loc.YesNo(l.Holiday),
			wage.FormatHM(l.Shift.Total),
			round2(l.Shift.Total),
			round2(l.Shift.Premium),
			inv,
			cash,
			wd,
			final,
		}
		if err := f.SetSheetRow(reportSheet, cellName(1, row), &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	pay, _ := r.Totals.RoundedPay().Float64()
	totals := []interface{}{
		totalLabel, "", "", "", "",
		wage.FormatHM(r.Totals.Hours),
		round2(r.Totals.Hours),
		round2(r.Totals.PremiumHours),
		"", "", "",
		pay,
	}
	if err := f.SetSheetRow(reportSheet, cellName(1, row), &totals); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}
	if err := f.SetCellStyle(reportSheet, cellName(1, row), cellName(len(Columns), row), style); err != nil {
		return fmt.Errorf("style totals: %w", err)
	}

	if err := f.SetColWidth(reportSheet, "A", "A", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(reportSheet, "B", "L", 14); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write xlsx file: %w", err)
	}
	return nil
}

// Template writes an empty attendance sheet with the required headers,
// in Spanish or English, and one example row.
func Template(loc Locale, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(attendance.RequiredColumns))
	for i, c := range attendance.RequiredColumns {
		if loc.Spanish {
			header[i] = attendance.SpanishColumns[c]
		} else {
			header[i] = c
		}
	}
	example := []interface{}{"Ana Pérez", "2024-03-05", "19:00", "23:00", 0, 0, 0}

	if err := f.SetSheetRow(templateSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetSheetRow(templateSheet, "A2", &example); err != nil {
		return fmt.Errorf("write example: %w", err)
	}
	style, err := headerStyle(f)
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(templateSheet, "A1", cellName(len(header), 1), style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(templateSheet, "A", "G", 20); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}
