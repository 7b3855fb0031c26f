package export

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/sadopc/wagecalc/internal/payroll"
	"github.com/sadopc/wagecalc/internal/wage"
)

// ErrNotReady is returned for reports still waiting on corrections.
var ErrNotReady = errors.New("report has pending corrections")

// Columns is the report column order.
var Columns = []string{
	"Employee",
	"Date",
	"Entry",
	"Exit",
	"IsHoliday",
	"TotalHours",
	"TotalHoursDecimal",
	"PremiumHours",
	"InventoryDeduction",
	"CashDeduction",
	"WithdrawalAmount",
	"FinalPay",
}

const totalLabel = "TOTAL"

// Locale picks the words used for boolean cells and sheet headers.
type Locale struct {
	Tag     language.Tag
	Yes     string
	No      string
	Spanish bool
}

var (
	english = Locale{Tag: language.English, Yes: "Yes", No: "No"}
	spanish = Locale{Tag: language.Spanish, Yes: "Sí", No: "No", Spanish: true}
)

var matcher = language.NewMatcher([]language.Tag{language.Spanish, language.English})

// LocaleFor matches a BCP 47 tag such as "es-CL" or "en". Unknown tags fall
// back to Spanish.
func LocaleFor(tag string) Locale {
	t, _ := language.MatchStrings(matcher, tag)
	if base, _ := t.Base(); base.String() == "en" {
		return english
	}
	return spanish
}

func (l Locale) YesNo(v bool) string {
	if v {
		return l.Yes
	}
	return l.No
}

func lineFields(l payroll.Line, loc Locale) []string {
	return []string{
		l.Record.Employee,
		l.Record.Date.Format("2006-01-02"),
		clockField(l.Record.Entry),
		clockField(l.Record.Exit),
		loc.YesNo(l.Holiday),
		wage.FormatHM(l.Shift.Total),
		fmt.Sprintf("%.2f", l.Shift.Total),
		fmt.Sprintf("%.2f", l.Shift.Premium),
		l.Record.Deductions.Inventory.String(),
		l.Record.Deductions.Cash.String(),
		l.Record.Deductions.Withdrawal.String(),
		l.Pay.Final.StringFixed(2),
	}
}

func totalFields(t payroll.Totals) []string {
	return []string{
		totalLabel, "", "", "", "",
		wage.FormatHM(t.Hours),
		fmt.Sprintf("%.2f", t.Hours),
		fmt.Sprintf("%.2f", t.PremiumHours),
		"", "", "",
		t.RoundedPay().StringFixed(2),
	}
}

// Money renders an amount with thousands separators and two decimals.
func Money(d decimal.Decimal) string {
	sign := ""
	if d = d.Round(2); d.IsNegative() {
		sign, d = "-", d.Abs()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	n, _ := new(big.Int).SetString(whole, 10)
	return sign + humanize.BigComma(n) + "." + frac
}
