package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/wagecalc/internal/payroll"
)

func ToCSV(r payroll.Report, loc Locale, path string) error {
	if !r.Ready() {
		return ErrNotReady
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(Columns); err != nil {
		return err
	}
	for _, l := range r.Lines {
		if err := w.Write(lineFields(l, loc)); err != nil {
			return err
		}
	}
	if err := w.Write(totalFields(r.Totals)); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func clockField(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}
