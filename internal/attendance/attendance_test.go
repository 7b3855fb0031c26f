package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var header = []string{"Employee", "Date", "Entry", "Exit", "InventoryDeduction", "CashDeduction", "WithdrawalAmount"}

func row(n int, values ...string) Row {
	return NewRow(n, header, values)
}

func TestValidateColumns(t *testing.T) {
	assert.NoError(t, ValidateColumns(header))

	spanish := []string{"Empleado", "FECHA", " entrada ", "Salida", "Descuento Inventario", "descuento_caja", "Retiro", "Notas"}
	assert.NoError(t, ValidateColumns(spanish))

	err := ValidateColumns([]string{"Employee", "Entry", "CashDeduction"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"Date", "Exit", "InventoryDeduction", "WithdrawalAmount"}, verr.Missing)
	assert.Contains(t, err.Error(), "Date, Exit, InventoryDeduction, WithdrawalAmount")
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "  ", "NaN", "nat", "None", "NULL"} {
		assert.True(t, IsMissing(v, false), v)
	}
	for _, v := range []string{"0:00", "00:00", "00:00:00"} {
		assert.True(t, IsMissing(v, true), v)
		assert.False(t, IsMissing(v, false), v)
	}
	assert.False(t, IsMissing("08:00", true))
}

func TestParseRowComplete(t *testing.T) {
	rec, err := ParseRow(row(2, "Ana", "05/03/2024", "19:00", "23:00", "1500", "", "200.50"), DefaultParseOptions())
	require.NoError(t, err)

	assert.Equal(t, 2, rec.Row)
	assert.Equal(t, "Ana", rec.Employee)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), rec.Date)
	require.NotNil(t, rec.Entry)
	require.NotNil(t, rec.Exit)
	assert.Equal(t, time.Date(2024, time.March, 5, 19, 0, 0, 0, time.UTC), *rec.Entry)
	assert.Equal(t, time.Date(2024, time.March, 5, 23, 0, 0, 0, time.UTC), *rec.Exit)
	assert.True(t, rec.Deductions.Inventory.Equal(decimal.NewFromInt(1500)))
	assert.True(t, rec.Deductions.Cash.IsZero())
	assert.True(t, rec.Deductions.Withdrawal.Equal(decimal.RequireFromString("200.5")))
	assert.True(t, rec.Complete())
}

func TestParseRowFormats(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		entry string
		day   time.Time
		clock time.Duration
	}{
		{name: "ISO date", date: "2024-03-05", entry: "8:30", day: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), clock: 8*time.Hour + 30*time.Minute},
		{name: "Excel serial", date: "45356", entry: "0.5", day: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), clock: 12 * time.Hour},
		{name: "Datetime cell", date: "2024-03-05 00:00:00", entry: "2024-03-05 07:15:00", day: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), clock: 7*time.Hour + 15*time.Minute},
		{name: "Dotted clock", date: "05.03.2024", entry: "20.45", day: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), clock: 20*time.Hour + 45*time.Minute},
		{name: "12 hour clock", date: "5/3/2024", entry: "9:00 pm", day: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), clock: 21 * time.Hour},
		{name: "Dotted clock after midnight", date: "2024-03-05", entry: "0.30", day: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), clock: 30 * time.Minute},
		{name: "Dotted clock quarter to one", date: "2024-03-05", entry: "0.45", day: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), clock: 45 * time.Minute},
		{name: "Single digit dotted clock", date: "2024-03-05", entry: "8.30", day: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), clock: 8*time.Hour + 30*time.Minute},
		{name: "Day fraction that is no clock", date: "2024-03-05", entry: "0.75", day: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), clock: 18 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseRow(row(2, "Ana", tt.date, tt.entry, "", "", "", ""), DefaultParseOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.day, rec.Date)
			require.NotNil(t, rec.Entry)
			assert.Equal(t, tt.day.Add(tt.clock), *rec.Entry)
			assert.Nil(t, rec.Exit)
		})
	}
}

func TestParseRowAmounts(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "1500", want: "1500"},
		{in: "1.5", want: "1.5"},
		{in: "1,5", want: "1.5"},
		{in: "0.125", want: "0.125"},
		{in: "1.500", want: "1500"},
		{in: "1,500", want: "1500"},
		{in: "1.500.000", want: "1500000"},
		{in: "2.500,50", want: "2500.5"},
		{in: "2,500.50", want: "2500.5"},
		{in: "$ 3.000", want: "3000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			rec, err := ParseRow(row(2, "Ana", "2024-03-05", "08:00", "17:00", tt.in, "", ""), DefaultParseOptions())
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(rec.Deductions.Inventory),
				"got %s", rec.Deductions.Inventory)
		})
	}
}

func TestParseRowZeroTime(t *testing.T) {
	rec, err := ParseRow(row(3, "Luis", "2024-03-05", "00:00", "17:00", "", "", ""), DefaultParseOptions())
	require.NoError(t, err)
	assert.Nil(t, rec.Entry)
	assert.Equal(t, []Field{FieldEntry}, rec.Missing())

	opts := DefaultParseOptions()
	opts.ZeroTimeUnset = false
	rec, err = ParseRow(row(3, "Luis", "2024-03-05", "00:00", "17:00", "", "", ""), opts)
	require.NoError(t, err)
	require.NotNil(t, rec.Entry)
	assert.True(t, rec.Complete())
}

func TestParseRowErrors(t *testing.T) {
	tests := []struct {
		name  string
		row   Row
		field string
		is    error
	}{
		{name: "Blank employee", row: row(4, " ", "2024-03-05", "08:00", "17:00", "", "", ""), field: ColEmployee, is: ErrBlankEmployee},
		{name: "Blank date", row: row(5, "Ana", "nan", "08:00", "17:00", "", "", ""), field: ColDate, is: ErrBlankDate},
		{name: "Bad date", row: row(6, "Ana", "yesterday", "08:00", "17:00", "", "", ""), field: ColDate},
		{name: "Bad entry", row: row(7, "Ana", "2024-03-05", "8h", "17:00", "", "", ""), field: ColEntry},
		{name: "Bad amount", row: row(8, "Ana", "2024-03-05", "08:00", "17:00", "abc", "", ""), field: ColInventory},
		{name: "Misgrouped amount", row: row(10, "Ana", "2024-03-05", "08:00", "17:00", "", "", "1.50.0"), field: ColWithdrawal},
		{name: "Negative amount", row: row(9, "Ana", "2024-03-05", "08:00", "17:00", "", "-10", ""), field: ColCash, is: ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRow(tt.row, DefaultParseOptions())
			var perr *RowParseError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, tt.row.Number, perr.Row)
			assert.Equal(t, tt.field, perr.Field)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	var records []DailyRecord
	for i, r := range []Row{
		row(2, "Ana", "2024-03-05", "08:00", "17:00", "", "", ""),
		row(3, "Ana", "2024-03-06", "08:00", "", "", "", ""),
		row(4, "Luis", "2024-03-05", "", "22:00", "", "", ""),
		row(5, "Luis", "2024-03-06", "", "none", "", "", ""),
	} {
		rec, err := ParseRow(r, DefaultParseOptions())
		require.NoError(t, err, "row %d", i)
		records = append(records, rec)
	}
	before := append([]DailyRecord(nil), records...)

	c := Classify(records)
	require.Len(t, c.Complete, 1)
	require.Len(t, c.Partial, 2)
	require.Len(t, c.Empty, 1)

	assert.Equal(t, 2, c.Complete[0].Row)
	assert.Equal(t, []Field{FieldExit}, c.Partial[0].Missing)
	assert.Equal(t, []Field{FieldEntry}, c.Partial[1].Missing)
	assert.Equal(t, 5, c.Empty[0].Row)
	assert.Equal(t, "row 3 (Ana, 2024-03-06): missing exit", c.Partial[0].Describe())
	assert.Equal(t, before, records)
}
