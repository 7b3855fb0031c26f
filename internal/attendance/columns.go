package attendance

import (
	"fmt"
	"strings"
)

// Canonical column names of an attendance sheet.
const (
	ColEmployee   = "Employee"
	ColDate       = "Date"
	ColEntry      = "Entry"
	ColExit       = "Exit"
	ColInventory  = "InventoryDeduction"
	ColCash       = "CashDeduction"
	ColWithdrawal = "WithdrawalAmount"
)

// RequiredColumns lists every column a sheet must carry, in sheet order.
var RequiredColumns = []string{
	ColEmployee,
	ColDate,
	ColEntry,
	ColExit,
	ColInventory,
	ColCash,
	ColWithdrawal,
}

// SpanishColumns are the headers used by the Spanish sheet template.
var SpanishColumns = map[string]string{
	ColEmployee:   "Empleado",
	ColDate:       "Fecha",
	ColEntry:      "Entrada",
	ColExit:       "Salida",
	ColInventory:  "Descuento Inventario",
	ColCash:       "Descuento Caja",
	ColWithdrawal: "Retiro",
}

var columnAliases = map[string]string{
	"employee":            ColEmployee,
	"empleado":            ColEmployee,
	"name":                ColEmployee,
	"nombre":              ColEmployee,
	"date":                ColDate,
	"fecha":               ColDate,
	"entry":               ColEntry,
	"entrada":             ColEntry,
	"in":                  ColEntry,
	"exit":                ColExit,
	"salida":              ColExit,
	"out":                 ColExit,
	"inventorydeduction":  ColInventory,
	"descuentoinventario": ColInventory,
	"cashdeduction":       ColCash,
	"descuentocaja":       ColCash,
	"withdrawalamount":    ColWithdrawal,
	"withdrawal":          ColWithdrawal,
	"retiro":              ColWithdrawal,
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// CanonicalColumn maps a sheet header, in English or Spanish and in any
// case or spacing, to its canonical column name.
func CanonicalColumn(header string) (string, bool) {
	c, ok := columnAliases[normalizeHeader(header)]
	return c, ok
}

// ValidationError reports required columns absent from a sheet header.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ValidateColumns checks a header row before any data row is touched.
func ValidateColumns(header []string) error {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if c, ok := CanonicalColumn(h); ok {
			seen[c] = true
		}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !seen[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
