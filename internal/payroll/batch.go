package payroll

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sadopc/wagecalc/internal/attendance"
	"github.com/sadopc/wagecalc/internal/reconcile"
	"github.com/sadopc/wagecalc/internal/wage"
)

// Line is one computed record.
type Line struct {
	Record    attendance.DailyRecord
	Holiday   bool
	Shift     wage.Decomposition
	Pay       wage.PayBreakdown
	Corrected bool
}

// Totals are sums of unrounded line values.
type Totals struct {
	Records      int
	Hours        float64
	PremiumHours float64
	Pay          decimal.Decimal
}

// RoundedPay is the batch pay rounded once for presentation.
func (t Totals) RoundedPay() decimal.Decimal {
	return t.Pay.Round(2)
}

// LineError is a record that parsed but could not be priced.
type LineError struct {
	Row      int
	Employee string
	Err      error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.Employee, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Report is the outcome of Batch.Compute. While Pending is non-empty it
// carries no lines and no totals.
type Report struct {
	BatchID  string
	Lines    []Line
	Totals   Totals
	Pending  []reconcile.Item
	Skipped  []error
	Excluded []attendance.DailyRecord
}

// Ready reports whether the report carries payroll figures.
func (r Report) Ready() bool {
	return len(r.Pending) == 0
}

// Batch is one attendance sheet going through validation, reconciliation
// and pricing.
type Batch struct {
	id       string
	cfg      Config
	log      *zap.Logger
	complete []attendance.DailyRecord
	excluded []attendance.DailyRecord
	skipped  []error
	workflow *reconcile.Workflow
	report   *Report
}

// NewBatch validates the header, parses every row and classifies the
// records. A missing column fails the whole batch before any row is read;
// a malformed row is skipped and reported.
func NewBatch(header []string, rows []attendance.Row, cfg Config, log *zap.Logger) (*Batch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new batch: %w", err)
	}
	if err := attendance.ValidateColumns(header); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	b := &Batch{id: uuid.NewString(), cfg: cfg}
	b.log = log.With(zap.String("batch", b.id))

	records := make([]attendance.DailyRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := attendance.ParseRow(row, cfg.Parse)
		if err != nil {
			b.log.Warn("row skipped", zap.Int("row", row.Number), zap.Error(err))
			b.skipped = append(b.skipped, err)
			continue
		}
		records = append(records, rec)
	}

	c := attendance.Classify(records)
	b.complete = c.Complete
	b.excluded = c.Empty
	b.workflow = reconcile.New(c.Partial)

	b.log.Info("batch loaded",
		zap.Int("rows", len(rows)),
		zap.Int("complete", len(c.Complete)),
		zap.Int("partial", len(c.Partial)),
		zap.Int("empty", len(c.Empty)),
		zap.Int("skipped", len(b.skipped)),
	)
	return b, nil
}

func (b *Batch) ID() string {
	return b.id
}

func (b *Batch) Config() Config {
	return b.cfg
}

// Pending returns the records that block computation.
func (b *Batch) Pending() []reconcile.Item {
	return b.workflow.Waiting()
}

// Items returns every record that went through reconciliation.
func (b *Batch) Items() []reconcile.Item {
	return b.workflow.Items()
}

// Supply hands an operator correction to the reconciliation workflow.
func (b *Batch) Supply(row int, c reconcile.Correction) (reconcile.State, error) {
	state, err := b.workflow.Supply(row, c)
	if err != nil {
		return state, err
	}
	b.log.Info("correction supplied",
		zap.Int("row", row),
		zap.Stringer("state", state),
		zap.Int("pending", b.workflow.Pending()),
	)
	return state, nil
}

// Compute prices the batch once every partial record has been corrected.
// Until then the report lists the pending records and nothing else. A
// computed report is cached; use Recompute to price again.
func (b *Batch) Compute() Report {
	if b.report != nil {
		return *b.report
	}

	if !b.workflow.Ready() {
		pending := b.workflow.Waiting()
		b.log.Info("batch pending", zap.Int("pending", len(pending)))
		return Report{
			BatchID:  b.id,
			Pending:  pending,
			Skipped:  b.skipped,
			Excluded: b.excluded,
		}
	}

	r := Report{
		BatchID:  b.id,
		Skipped:  append([]error(nil), b.skipped...),
		Excluded: b.excluded,
		Totals:   Totals{Pay: decimal.Zero},
	}

	add := func(rec attendance.DailyRecord, corrected bool) {
		line, err := b.price(rec)
		if err != nil {
			b.log.Warn("record skipped", zap.Int("row", rec.Row), zap.Error(err))
			r.Skipped = append(r.Skipped, &LineError{Row: rec.Row, Employee: rec.Employee, Err: err})
			return
		}
		line.Corrected = corrected
		r.Lines = append(r.Lines, line)
	}

	for _, rec := range b.complete {
		add(rec, false)
	}
	for _, rec := range b.workflow.Corrected() {
		add(rec, true)
		if err := b.workflow.MarkComputed(rec.Row); err != nil {
			b.log.Error("mark computed", zap.Int("row", rec.Row), zap.Error(err))
		}
	}

	sort.SliceStable(r.Lines, func(i, j int) bool {
		return r.Lines[i].Record.Row < r.Lines[j].Record.Row
	})
	for _, l := range r.Lines {
		r.Totals.Records++
		r.Totals.Hours += l.Shift.Total
		r.Totals.PremiumHours += l.Shift.Premium
		r.Totals.Pay = r.Totals.Pay.Add(l.Pay.Final)
	}

	b.log.Info("batch computed",
		zap.Int("records", r.Totals.Records),
		zap.Float64("hours", r.Totals.Hours),
		zap.String("pay", r.Totals.RoundedPay().StringFixed(2)),
		zap.Int("skipped", len(r.Skipped)),
	)
	b.report = &r
	return r
}

// Recompute discards the cached report and prices the batch again.
func (b *Batch) Recompute() Report {
	b.workflow.Reopen()
	b.report = nil
	return b.Compute()
}

func (b *Batch) price(rec attendance.DailyRecord) (Line, error) {
	if !rec.Complete() {
		return Line{}, fmt.Errorf("price record: %w", wage.ErrMalformedShift)
	}
	shift, err := wage.Decompose(*rec.Entry, *rec.Exit, b.cfg.Policy)
	if err != nil {
		return Line{}, fmt.Errorf("decompose shift: %w", err)
	}
	holiday := b.cfg.Holidays.Contains(rec.Date)
	pay, err := wage.ComputePay(shift.Normal, shift.Premium, holiday, b.cfg.Rates, rec.Deductions)
	if err != nil {
		return Line{}, fmt.Errorf("compute pay: %w", err)
	}
	return Line{Record: rec, Holiday: holiday, Shift: shift, Pay: pay}, nil
}
