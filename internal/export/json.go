package export

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/sadopc/wagecalc/internal/payroll"
	"github.com/sadopc/wagecalc/internal/wage"
)

type jsonReport struct {
	ExportedAt        string     `json:"exported_at"`
	BatchID           string     `json:"batch_id"`
	Count             int        `json:"count"`
	TotalHours        string     `json:"total_hours"`
	TotalHoursDecimal float64    `json:"total_hours_decimal"`
	TotalPay          string     `json:"total_pay"`
	Lines             []jsonLine `json:"lines"`
}

type jsonLine struct {
	Employee           string  `json:"employee"`
	Date               string  `json:"date"`
	Entry              string  `json:"entry"`
	Exit               string  `json:"exit"`
	IsHoliday          string  `json:"is_holiday"`
	TotalHours         string  `json:"total_hours"`
	TotalHoursDecimal  float64 `json:"total_hours_decimal"`
	PremiumHours       float64 `json:"premium_hours"`
	InventoryDeduction string  `json:"inventory_deduction"`
	CashDeduction      string  `json:"cash_deduction"`
	WithdrawalAmount   string  `json:"withdrawal_amount"`
	FinalPay           string  `json:"final_pay"`
	Corrected          bool    `json:"corrected,omitempty"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ToJSON(r payroll.Report, loc Locale, path string) error {
	if !r.Ready() {
		return ErrNotReady
	}

	export := jsonReport{
		ExportedAt:        time.Now().UTC().Format(time.RFC3339),
		BatchID:           r.BatchID,
		Count:             len(r.Lines),
		TotalHours:        wage.FormatHM(r.Totals.Hours),
		TotalHoursDecimal: round2(r.Totals.Hours),
		TotalPay:          r.Totals.RoundedPay().StringFixed(2),
	}

	for _, l := range r.Lines {
		export.Lines = append(export.Lines, jsonLine{
			Employee:           l.Record.Employee,
			Date:               l.Record.Date.Format("2006-01-02"),
			Entry:              clockField(l.Record.Entry),
			Exit:               clockField(l.Record.Exit),
			IsHoliday:          loc.YesNo(l.Holiday),
			TotalHours:         wage.FormatHM(l.Shift.Total),
			TotalHoursDecimal:  round2(l.Shift.Total),
			PremiumHours:       round2(l.Shift.Premium),
			InventoryDeduction: l.Record.Deductions.Inventory.String(),
			CashDeduction:      l.Record.Deductions.Cash.String(),
			WithdrawalAmount:   l.Record.Deductions.Withdrawal.String(),
			FinalPay:           l.Pay.Final.StringFixed(2),
			Corrected:          l.Corrected,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
