package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/sadopc/wagecalc/internal/attendance"
	"github.com/sadopc/wagecalc/internal/ingest"
	"github.com/sadopc/wagecalc/internal/payroll"
	"github.com/sadopc/wagecalc/internal/wage"
)

var sheetHeader = []string{"Employee", "Date", "Entry", "Exit", "InventoryDeduction", "CashDeduction", "WithdrawalAmount"}

func sampleReport(t *testing.T, rows ...[]string) payroll.Report {
	t.Helper()
	cfg := payroll.DefaultConfig()
	cfg.Rates.Hourly = decimal.NewFromInt(10000)
	holidays, err := wage.ParseHolidays("2024-03-06")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Holidays = holidays

	var data []attendance.Row
	for i, r := range rows {
		data = append(data, attendance.NewRow(i+2, sheetHeader, r))
	}
	b, err := payroll.NewBatch(sheetHeader, data, cfg, nil)
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	return b.Compute()
}

func defaultReport(t *testing.T) payroll.Report {
	return sampleReport(t,
		[]string{"Ana", "2024-03-05", "08:00", "17:00", "1000", "", ""},
		[]string{"Luis", "2024-03-06", "19:00", "23:00", "", "500", "250.50"},
	)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// ============================================================
// Locale
// ============================================================

func TestLocaleFor(t *testing.T) {
	tests := []struct {
		tag string
		yes string
	}{
		{"es", "Sí"},
		{"es-CL", "Sí"},
		{"en", "Yes"},
		{"en-GB", "Yes"},
		{"", "Sí"},
		{"fr", "Sí"},
	}

	for _, tt := range tests {
		got := LocaleFor(tt.tag)
		if got.Yes != tt.yes {
			t.Errorf("LocaleFor(%q).Yes = %q, want %q", tt.tag, got.Yes, tt.yes)
		}
		if got.No != "No" {
			t.Errorf("LocaleFor(%q).No = %q, want No", tt.tag, got.No)
		}
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	if err := ToCSV(defaultReport(t), LocaleFor("en"), path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)
	// header + 2 lines + totals
	if len(records) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(records))
	}

	for i, h := range Columns {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	ana := records[1]
	want := []string{"Ana", "2024-03-05", "08:00", "17:00", "No", "9:00", "9.00", "0.00", "1000", "0", "0", "89000.00"}
	for i := range want {
		if ana[i] != want[i] {
			t.Fatalf("Ana %s = %q, want %q", Columns[i], ana[i], want[i])
		}
	}

	// Holiday evening: 2h x 10000 x 2 + 2h x 10000 x 2 x 1.3 - 750.50
	luis := records[2]
	if luis[4] != "Yes" {
		t.Fatalf("IsHoliday = %q, want Yes", luis[4])
	}
	if luis[7] != "2.00" {
		t.Fatalf("PremiumHours = %q, want 2.00", luis[7])
	}
	if luis[10] != "250.5" {
		t.Fatalf("WithdrawalAmount = %q, want 250.5", luis[10])
	}
	if luis[11] != "91249.50" {
		t.Fatalf("FinalPay = %q, want 91249.50", luis[11])
	}

	total := records[3]
	if total[0] != "TOTAL" || total[5] != "13:00" || total[11] != "180249.50" {
		t.Fatalf("unexpected totals row %v", total)
	}
}

func TestToCSVSpanish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := ToCSV(defaultReport(t), LocaleFor("es"), path); err != nil {
		t.Fatal(err)
	}
	if got := readCSV(t, path)[2][4]; got != "Sí" {
		t.Fatalf("IsHoliday = %q, want Sí", got)
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(sampleReport(t), LocaleFor("en"), path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("expected header and totals, got %d rows", len(records))
	}
	if records[1][11] != "0.00" {
		t.Fatalf("empty total = %q, want 0.00", records[1][11])
	}
}

func TestToCSVPending(t *testing.T) {
	r := sampleReport(t, []string{"Ana", "2024-03-05", "08:00", "", "", "", ""})
	path := filepath.Join(t.TempDir(), "pending.csv")

	err := ToCSV(r, LocaleFor("en"), path)
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("no file should be written for a pending report")
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(defaultReport(t), LocaleFor("en"), "/nonexistent/dir/file.csv")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	r := sampleReport(t, []string{`Pérez, "Toño"`, "2024-03-05", "08:00", "09:00", "", "", ""})
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(r, LocaleFor("en"), path); err != nil {
		t.Fatal(err)
	}
	if got := readCSV(t, path)[1][0]; got != `Pérez, "Toño"` {
		t.Fatalf("employee name mangled: %q", got)
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	r := defaultReport(t)
	if err := ToJSON(r, LocaleFor("en"), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonReport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 2 || len(result.Lines) != 2 {
		t.Fatalf("count = %d, lines = %d, want 2", result.Count, len(result.Lines))
	}
	if result.BatchID != r.BatchID {
		t.Fatalf("batch_id = %q, want %q", result.BatchID, r.BatchID)
	}
	if result.TotalPay != "180249.50" {
		t.Fatalf("total_pay = %q", result.TotalPay)
	}
	if result.TotalHours != "13:00" || result.TotalHoursDecimal != 13 {
		t.Fatalf("total hours = %q / %v", result.TotalHours, result.TotalHoursDecimal)
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	luis := result.Lines[1]
	if luis.IsHoliday != "Yes" || luis.PremiumHours != 2 || luis.FinalPay != "91249.50" {
		t.Fatalf("unexpected line %+v", luis)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be pretty-printed")
	}
}

func TestToJSONPending(t *testing.T) {
	r := sampleReport(t, []string{"Ana", "2024-03-05", "", "17:00", "", "", ""})
	err := ToJSON(r, LocaleFor("en"), filepath.Join(t.TempDir(), "pending.json"))
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestToJSONBadPath(t *testing.T) {
	err := ToJSON(defaultReport(t), LocaleFor("en"), "/nonexistent/dir/file.json")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// XLSX
// ============================================================

func TestToXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	if err := ToXLSX(defaultReport(t), LocaleFor("es"), path); err != nil {
		t.Fatalf("ToXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0][11] != "FinalPay" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[2][4] != "Sí" {
		t.Fatalf("IsHoliday = %q, want Sí", rows[2][4])
	}
	if rows[1][11] != "89000" {
		t.Fatalf("FinalPay = %q, want 89000", rows[1][11])
	}
	if rows[3][0] != "TOTAL" {
		t.Fatalf("totals row = %v", rows[3])
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	for _, tag := range []string{"es", "en"} {
		path := filepath.Join(t.TempDir(), "template-"+tag+".xlsx")
		if err := Template(LocaleFor(tag), path); err != nil {
			t.Fatalf("Template(%s): %v", tag, err)
		}

		header, rows, err := ingest.Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", tag, err)
		}
		if err := attendance.ValidateColumns(header); err != nil {
			t.Fatalf("template %s header invalid: %v", tag, err)
		}
		if len(rows) != 1 {
			t.Fatalf("template %s rows = %d, want 1", tag, len(rows))
		}
		if _, err := attendance.ParseRow(rows[0], attendance.DefaultParseOptions()); err != nil {
			t.Fatalf("template %s example row: %v", tag, err)
		}
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"180249.5", "180,249.50"},
		{"13937", "13,937.00"},
		{"0", "0.00"},
		{"999.994", "999.99"},
		{"-2500.5", "-2,500.50"},
		{"-0.25", "-0.25"},
		{"123456789012345678.125", "123,456,789,012,345,678.13"},
	}
	for _, tt := range tests {
		if got := Money(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("Money(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
