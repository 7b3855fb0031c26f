package attendance

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/sadopc/wagecalc/internal/wage"
)

var (
	ErrBlankEmployee  = errors.New("employee is blank")
	ErrBlankDate      = errors.New("date is blank")
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// Row is one raw data row keyed by canonical column name. Number is the
// 1-based sheet row, so the first data row under the header is 2.
type Row struct {
	Number int
	Cells  map[string]string
}

// NewRow pairs values with a header row. Unknown headers are dropped.
func NewRow(number int, header, values []string) Row {
	cells := make(map[string]string, len(RequiredColumns))
	for i, h := range header {
		c, ok := CanonicalColumn(h)
		if !ok || i >= len(values) {
			continue
		}
		cells[c] = values[i]
	}
	return Row{Number: number, Cells: cells}
}

func (r Row) Get(col string) string {
	return strings.TrimSpace(r.Cells[col])
}

// RowParseError reports a malformed cell. The row is skipped and the batch
// carries on.
type RowParseError struct {
	Row      int
	Employee string
	Field    string
	Value    string
	Err      error
}

func (e *RowParseError) Error() string {
	who := e.Employee
	if who == "" {
		who = "unknown employee"
	}
	return fmt.Sprintf("row %d (%s): %s %q: %v", e.Row, who, e.Field, e.Value, e.Err)
}

func (e *RowParseError) Unwrap() error {
	return e.Err
}

// DailyRecord is one employee's attendance for one calendar date.
type DailyRecord struct {
	Row        int
	Employee   string
	Date       time.Time
	Entry      *time.Time
	Exit       *time.Time
	Deductions wage.Deductions
}

// Missing lists the absent punches, entry first.
func (r DailyRecord) Missing() []Field {
	var out []Field
	if r.Entry == nil {
		out = append(out, FieldEntry)
	}
	if r.Exit == nil {
		out = append(out, FieldExit)
	}
	return out
}

func (r DailyRecord) Complete() bool {
	return r.Entry != nil && r.Exit != nil
}

// ParseOptions controls cell interpretation.
type ParseOptions struct {
	// ZeroTimeUnset treats a 00:00 punch as a blank cell.
	ZeroTimeUnset bool
	Location      *time.Location
}

func DefaultParseOptions() ParseOptions {
	return ParseOptions{ZeroTimeUnset: true, Location: time.UTC}
}

var missingTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"nat":  true,
	"none": true,
	"null": true,
	"-":    true,
}

var zeroTimeTokens = map[string]bool{
	"0:00":     true,
	"00:00":    true,
	"0:00:00":  true,
	"00:00:00": true,
}

// IsMissing reports whether a raw cell stands for an absent value.
func IsMissing(v string, zeroTimeUnset bool) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if missingTokens[v] {
		return true
	}
	return zeroTimeUnset && zeroTimeTokens[v]
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	time.RFC3339,
}

func parseDate(v string, loc *time.Location) (time.Time, error) {
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if serial >= 20000 && serial <= 80000 {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return time.Time{}, err
			}
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", v)
}

// parseClock accepts clock strings plus Excel day fractions and serials. A
// valid H.MM clock such as "0.30" wins over the day fraction it resembles.
func parseClock(v string) (wage.TimeOfDay, error) {
	if wage.IsDottedClock(v) {
		if clock, err := wage.ParseTimeOfDay(v); err == nil {
			return clock, nil
		}
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !strings.Contains(v, ":") {
		if (f >= 0 && f < 1) || f >= 20000 {
			_, frac := math.Modf(f)
			secs := math.Round(frac * 24 * 3600)
			return wage.TimeOfDay(time.Duration(secs) * time.Second), nil
		}
	}
	return wage.ParseTimeOfDay(v)
}

// parseAmount reads a deduction written with either decimal mark. When both
// '.' and ',' appear the last one is the decimal mark. A lone mark followed
// by exactly three digits, as in "1.500" or "1,500", groups thousands.
func parseAmount(v string) (decimal.Decimal, error) {
	v = strings.NewReplacer("$", "", " ", "").Replace(v)

	dot, comma := strings.LastIndexByte(v, '.'), strings.LastIndexByte(v, ',')
	switch {
	case dot >= 0 && comma >= 0:
		mark, group := ".", ","
		if comma > dot {
			mark, group = ",", "."
		}
		v = strings.ReplaceAll(v, group, "")
		v = strings.Replace(v, mark, ".", 1)
	case dot >= 0:
		v = resolveMark(v, ".")
	case comma >= 0:
		v = resolveMark(v, ",")
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}

// resolveMark turns an amount holding a single kind of separator into a
// plain decimal string.
func resolveMark(v, sep string) string {
	parts := strings.Split(v, sep)
	switch {
	case thousandGroups(parts):
		return strings.Join(parts, "")
	case len(parts) == 2:
		return parts[0] + "." + parts[1]
	}
	// Left as is so decimal parsing reports it.
	return v
}

// thousandGroups reports whether parts read as 1-3 leading digits (not a
// bare zero) followed by groups of exactly three digits.
func thousandGroups(parts []string) bool {
	lead := strings.TrimPrefix(parts[0], "-")
	if len(lead) == 0 || len(lead) > 3 || lead[0] == '0' || !digits(lead) {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 || !digits(p) {
			return false
		}
	}
	return true
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseRow converts a raw row into a DailyRecord. Blank punches stay nil;
// anything unparseable is a *RowParseError.
func ParseRow(r Row, opts ParseOptions) (DailyRecord, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	rec := DailyRecord{Row: r.Number, Employee: r.Get(ColEmployee)}
	fail := func(col string, err error) (DailyRecord, error) {
		return DailyRecord{}, &RowParseError{Row: r.Number, Employee: rec.Employee, Field: col, Value: r.Get(col), Err: err}
	}

	if IsMissing(rec.Employee, false) {
		return fail(ColEmployee, ErrBlankEmployee)
	}

	raw := r.Get(ColDate)
	if IsMissing(raw, false) {
		return fail(ColDate, ErrBlankDate)
	}
	date, err := parseDate(raw, loc)
	if err != nil {
		return fail(ColDate, err)
	}
	rec.Date = date

	for _, p := range []struct {
		col string
		dst **time.Time
	}{
		{ColEntry, &rec.Entry},
		{ColExit, &rec.Exit},
	} {
		raw := r.Get(p.col)
		if IsMissing(raw, opts.ZeroTimeUnset) {
			continue
		}
		clock, err := parseClock(raw)
		if err != nil {
			return fail(p.col, err)
		}
		if clock == 0 && opts.ZeroTimeUnset {
			continue
		}
		t := clock.On(date)
		*p.dst = &t
	}

	for _, p := range []struct {
		col string
		dst *decimal.Decimal
	}{
		{ColInventory, &rec.Deductions.Inventory},
		{ColCash, &rec.Deductions.Cash},
		{ColWithdrawal, &rec.Deductions.Withdrawal},
	} {
		raw := r.Get(p.col)
		if IsMissing(raw, false) {
			*p.dst = decimal.Zero
			continue
		}
		amount, err := parseAmount(raw)
		if err != nil {
			return fail(p.col, err)
		}
		*p.dst = amount
	}

	return rec, nil
}
