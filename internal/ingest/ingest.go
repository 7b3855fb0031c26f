package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/sadopc/wagecalc/internal/attendance"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptySheet        = errors.New("worksheet is empty")
)

// maxXLSRows bounds legacy workbook reads.
const maxXLSRows = 100000

// Formats lists accepted file extensions.
var Formats = []string{".xlsx", ".xlsm", ".xls", ".csv"}

// ReadFile reads the first worksheet of path as a grid of strings.
func ReadFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer f.Close()
	return ReadTable(f, filepath.Base(path))
}

// ReadTable reads a spreadsheet from r. The format is chosen from the
// filename extension.
func ReadTable(r io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	var rows [][]string
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(data)
	case ".xls":
		rows, err = readXLS(data)
	case ".csv", ".txt":
		rows, err = readCSV(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("open workbook: no worksheet found")
	}
	// Raw values keep dates as serials and times as day fractions, which
	// avoids locale-dependent display formats.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("open workbook: no worksheet found")
	}
	return wb.ReadAllCells(maxXLSRows), nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// detectDelimiter picks between comma, semicolon and tab by counting them
// in the header line.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, count := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > count {
			best, count = d, n
		}
	}
	return best
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Split takes the first non-blank row as the header and turns the rest into
// attendance rows numbered by their sheet position. Blank rows are dropped.
func Split(table [][]string) ([]string, []attendance.Row, error) {
	start := -1
	for i, row := range table {
		if !blank(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, nil, ErrEmptySheet
	}

	header := make([]string, len(table[start]))
	for i, h := range table[start] {
		header[i] = strings.TrimSpace(h)
	}

	var rows []attendance.Row
	for i := start + 1; i < len(table); i++ {
		if blank(table[i]) {
			continue
		}
		rows = append(rows, attendance.NewRow(i+1, header, table[i]))
	}
	return header, rows, nil
}

// Load reads and splits a sheet in one step.
func Load(path string) ([]string, []attendance.Row, error) {
	table, err := ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return Split(table)
}
