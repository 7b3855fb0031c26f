package ingest

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sadopc/wagecalc/internal/attendance"
)

func TestReadTableCSV(t *testing.T) {
	data := "\xef\xbb\xbfEmpleado;Fecha;Entrada;Salida;Descuento Inventario;Descuento Caja;Retiro\n" +
		"Ana;05/03/2024;08:00;17:00;;;\n" +
		";;;;;;\n" +
		"Luis;05/03/2024;19:00;23:00;1000;;\n"

	table, err := ReadTable(strings.NewReader(data), "march.csv")
	require.NoError(t, err)
	require.Len(t, table, 4)
	assert.Equal(t, "Empleado", table[0][0])

	header, rows, err := Split(table)
	require.NoError(t, err)
	require.NoError(t, attendance.ValidateColumns(header))
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, 4, rows[1].Number)
	assert.Equal(t, "Luis", rows[1].Get(attendance.ColEmployee))
	assert.Equal(t, "1000", rows[1].Get(attendance.ColInventory))
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ',', detectDelimiter([]byte("a,b,c\n1;2")))
	assert.Equal(t, ';', detectDelimiter([]byte("a;b;c")))
	assert.Equal(t, '\t', detectDelimiter([]byte("a\tb\tc\n")))
}

func TestReadTableUnsupported(t *testing.T) {
	_, err := ReadTable(strings.NewReader("x"), "sheet.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadTableEmpty(t *testing.T) {
	_, err := ReadTable(strings.NewReader(""), "empty.csv")
	assert.ErrorIs(t, err, ErrEmptySheet)

	_, _, err = Split([][]string{{"", " "}, {}})
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "march.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{
		"Employee", "Date", "Entry", "Exit", "InventoryDeduction", "CashDeduction", "WithdrawalAmount",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Ana", 45356, 0.75, "23:30", 0, 250.5, nil}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	header, rows, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, attendance.ValidateColumns(header))
	require.Len(t, rows, 1)

	rec, err := attendance.ParseRow(rows[0], attendance.DefaultParseOptions())
	require.NoError(t, err)
	day := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, day, rec.Date)
	require.NotNil(t, rec.Entry)
	assert.Equal(t, day.Add(18*time.Hour), *rec.Entry)
	require.NotNil(t, rec.Exit)
	assert.Equal(t, day.Add(23*time.Hour+30*time.Minute), *rec.Exit)
	assert.Equal(t, "250.5", rec.Deductions.Cash.String())
	assert.True(t, rec.Deductions.Withdrawal.IsZero())
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
