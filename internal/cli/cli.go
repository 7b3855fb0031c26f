package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sadopc/wagecalc/internal/attendance"
	"github.com/sadopc/wagecalc/internal/export"
	"github.com/sadopc/wagecalc/internal/ingest"
	"github.com/sadopc/wagecalc/internal/payroll"
	"github.com/sadopc/wagecalc/internal/reconcile"
	"github.com/sadopc/wagecalc/internal/store"
	"github.com/sadopc/wagecalc/internal/wage"
)

var (
	ErrUsage = errors.New("usage")
	// ErrPending means the sheet has records that need corrections before
	// any figure can be produced.
	ErrPending = errors.New("corrections pending")
)

// Deps are the collaborators shared by every command.
type Deps struct {
	Store *store.Store
	Log   *zap.Logger
	Out   io.Writer
	// Locale overrides the stored locale when non-empty.
	Locale string
}

func Execute(args []string, d Deps) error {
	if len(args) < 1 {
		return usageError()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	switch args[0] {
	case "compute":
		return runCompute(args[1:], d)
	case "template":
		return runTemplate(args[1:], d)
	case "holidays":
		return runHolidays(args[1:], d)
	default:
		return usageError()
	}
}

func usageError() error {
	return fmt.Errorf("%w: wagecalc [compute|template|holidays] [...]", ErrUsage)
}

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func runCompute(args []string, d Deps) error {
	fs := flag.NewFlagSet("compute", flag.ContinueOnError)
	fs.SetOutput(d.Out)
	var holidays, fixes multiFlag
	fs.Var(&holidays, "holiday", "extra holiday for this run, YYYY-MM-DD (repeatable)")
	fs.Var(&fixes, "fix", "correction ROW=ENTRY,EXIT, either side may be blank (repeatable)")
	rate := fs.String("rate", "", "hourly rate (default: stored setting)")
	percent := fs.String("percent", "", "premium percent as a fraction, e.g. 0.30")
	formula := fs.String("formula", "", "premium formula: multiplicative or additive")
	capExit := fs.Bool("cap", false, "truncate exits at 22:00")
	out := fs.String("o", "", "write the report to a .csv, .json or .xlsx file")
	explain := fs.Bool("explain", false, "print a pay breakdown for every record")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: wagecalc compute [flags] <sheet.xlsx|xls|csv>", ErrUsage)
	}

	cfg, err := d.Store.PayrollConfig()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if *rate != "" {
		if cfg.Rates.Hourly, err = decimal.NewFromString(*rate); err != nil {
			return fmt.Errorf("parse -rate: %w", err)
		}
	}
	if *percent != "" {
		if cfg.Rates.PremiumPercent, err = decimal.NewFromString(*percent); err != nil {
			return fmt.Errorf("parse -percent: %w", err)
		}
	}
	if *formula != "" {
		if cfg.Rates.Formula, err = wage.ParseFormula(*formula); err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "cap" {
			cfg.Policy.CapExit = *capExit
		}
	})
	if len(holidays) > 0 {
		extra, err := wage.ParseHolidays(append(cfg.Holidays.Dates(), holidays...)...)
		if err != nil {
			return err
		}
		cfg.Holidays = extra
	}

	header, rows, err := ingest.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	batch, err := payroll.NewBatch(header, rows, cfg, d.Log)
	if err != nil {
		return err
	}

	for _, f := range fixes {
		row, c, err := parseFix(f)
		if err != nil {
			return err
		}
		if _, err := batch.Supply(row, c); err != nil {
			return err
		}
	}

	report := batch.Compute()
	printSkipped(d.Out, report)
	if !report.Ready() {
		printPending(d.Out, report)
		return fmt.Errorf("%w: %d record(s)", ErrPending, len(report.Pending))
	}

	loc, err := d.locale()
	if err != nil {
		return err
	}
	printReport(d.Out, report, loc)
	if *explain {
		for _, l := range report.Lines {
			fmt.Fprintln(d.Out)
			fmt.Fprint(d.Out, payroll.Explain(l, cfg.Rates))
		}
	}

	if *out != "" {
		if err := writeReport(report, loc, *out); err != nil {
			return err
		}
		fmt.Fprintf(d.Out, "\nwrote %s\n", *out)
	}
	return nil
}

func (d Deps) locale() (export.Locale, error) {
	if d.Locale != "" {
		return export.LocaleFor(d.Locale), nil
	}
	ps, err := d.Store.PaySettings()
	if err != nil {
		return export.Locale{}, err
	}
	return export.LocaleFor(ps.Locale), nil
}

func writeReport(r payroll.Report, loc export.Locale, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return export.ToCSV(r, loc, path)
	case ".json":
		return export.ToJSON(r, loc, path)
	case ".xlsx":
		return export.ToXLSX(r, loc, path)
	default:
		return fmt.Errorf("%w: %q", ingest.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// parseFix reads ROW=ENTRY,EXIT.
func parseFix(s string) (int, reconcile.Correction, error) {
	rowStr, times, ok := strings.Cut(s, "=")
	if !ok {
		return 0, reconcile.Correction{}, fmt.Errorf("parse -fix %q: want ROW=ENTRY,EXIT", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rowStr))
	if err != nil {
		return 0, reconcile.Correction{}, fmt.Errorf("parse -fix %q: %w", s, err)
	}
	entryStr, exitStr, _ := strings.Cut(times, ",")

	var c reconcile.Correction
	for _, p := range []struct {
		raw string
		dst **wage.TimeOfDay
	}{
		{entryStr, &c.Entry},
		{exitStr, &c.Exit},
	} {
		raw := strings.TrimSpace(p.raw)
		if raw == "" {
			continue
		}
		t, err := wage.ParseTimeOfDay(raw)
		if err != nil {
			return 0, reconcile.Correction{}, fmt.Errorf("parse -fix %q: %w", s, err)
		}
		*p.dst = &t
	}
	if c.Entry == nil && c.Exit == nil {
		return 0, reconcile.Correction{}, fmt.Errorf("parse -fix %q: no times given", s)
	}
	return row, c, nil
}

func printSkipped(w io.Writer, r payroll.Report) {
	for _, err := range r.Skipped {
		fmt.Fprintf(w, "skipped: %v\n", err)
	}
}

func printPending(w io.Writer, r payroll.Report) {
	fmt.Fprintf(w, "%d record(s) need corrections before pay can be computed:\n", len(r.Pending))
	for _, it := range r.Pending {
		fmt.Fprintf(w, "  %s\n", attendance.Incomplete{Record: it.Record, Missing: it.Missing}.Describe())
	}
	fmt.Fprintln(w, "supply them with -fix ROW=ENTRY,EXIT")
}

func printReport(w io.Writer, r payroll.Report, loc export.Locale) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Employee\tDate\tEntry\tExit\tHoliday\tHours\tPremium\tDeductions\tFinal\t")
	for _, l := range r.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%s\t%s\t\n",
			l.Record.Employee,
			l.Record.Date.Format("2006-01-02"),
			l.Record.Entry.Format("15:04"),
			l.Record.Exit.Format("15:04"),
			loc.YesNo(l.Holiday),
			wage.FormatHM(l.Shift.Total),
			l.Shift.Premium,
			export.Money(l.Pay.Deductions),
			export.Money(l.Pay.Final),
		)
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t\t\t%s\t%.2f\t\t%s\t\n",
		wage.FormatHM(r.Totals.Hours), r.Totals.PremiumHours, export.Money(r.Totals.Pay))
	tw.Flush()
	fmt.Fprintf(w, "%s record(s) computed, %d excluded (no punches)\n",
		humanize.Comma(int64(r.Totals.Records)), len(r.Excluded))
}

func runTemplate(args []string, d Deps) error {
	fs := flag.NewFlagSet("template", flag.ContinueOnError)
	fs.SetOutput(d.Out)
	lang := fs.String("lang", "", "header language: es or en (default: stored locale)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: wagecalc template [-lang es|en] <path.xlsx>", ErrUsage)
	}

	loc := export.LocaleFor(*lang)
	if *lang == "" {
		var err error
		if loc, err = d.locale(); err != nil {
			return err
		}
	}
	if err := export.Template(loc, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "wrote %s\n", fs.Arg(0))
	return nil
}

func runHolidays(args []string, d Deps) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: wagecalc holidays [list|add DATE [NAME]|remove DATE]", ErrUsage)
	}

	switch args[0] {
	case "list":
		holidays, err := d.Store.ListHolidays()
		if err != nil {
			return err
		}
		for _, h := range holidays {
			fmt.Fprintf(d.Out, "%s  %s\n", h.Date.Format("2006-01-02"), h.Name)
		}
		return nil
	case "add", "remove":
		if len(args) < 2 {
			return fmt.Errorf("%w: wagecalc holidays %s DATE", ErrUsage, args[0])
		}
		date, err := time.Parse("2006-01-02", args[1])
		if err != nil {
			return fmt.Errorf("parse date %q: %w", args[1], err)
		}
		if args[0] == "remove" {
			return d.Store.RemoveHoliday(date)
		}
		return d.Store.AddHoliday(date, strings.Join(args[2:], " "))
	default:
		return fmt.Errorf("%w: unknown holidays command %q", ErrUsage, args[0])
	}
}
