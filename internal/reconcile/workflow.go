package reconcile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sadopc/wagecalc/internal/attendance"
	"github.com/sadopc/wagecalc/internal/wage"
)

var (
	ErrUnknownRecord   = errors.New("record is not awaiting reconciliation")
	ErrFieldNotMissing = errors.New("field was not missing")
	ErrAlreadyComputed = errors.New("record already computed")
	ErrNotCorrected    = errors.New("record has not been corrected")
	ErrEmptyCorrection = errors.New("correction supplies no fields")
)

// State of one partial record.
type State int

const (
	Detected State = iota
	AwaitingCorrection
	Corrected
	Computed
)

func (s State) String() string {
	switch s {
	case Detected:
		return "detected"
	case AwaitingCorrection:
		return "awaiting correction"
	case Corrected:
		return "corrected"
	case Computed:
		return "computed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Correction carries operator-supplied punch times. Nil fields are left alone.
type Correction struct {
	Entry *wage.TimeOfDay
	Exit  *wage.TimeOfDay
}

func (c Correction) has(f attendance.Field) bool {
	switch f {
	case attendance.FieldEntry:
		return c.Entry != nil
	case attendance.FieldExit:
		return c.Exit != nil
	}
	return false
}

// Item tracks one partial record through reconciliation.
type Item struct {
	Record     attendance.DailyRecord
	Missing    []attendance.Field
	State      State
	Correction Correction
}

func (it Item) missing(f attendance.Field) bool {
	for _, m := range it.Missing {
		if m == f {
			return true
		}
	}
	return false
}

func (it Item) filled() bool {
	for _, m := range it.Missing {
		if !it.Correction.has(m) {
			return false
		}
	}
	return true
}

// Patched returns a copy of the record with the correction applied. The
// original record is never modified.
func (it Item) Patched() attendance.DailyRecord {
	rec := it.Record
	if it.Correction.Entry != nil {
		t := it.Correction.Entry.On(rec.Date)
		rec.Entry = &t
	}
	if it.Correction.Exit != nil {
		t := it.Correction.Exit.On(rec.Date)
		rec.Exit = &t
	}
	return rec
}

// Workflow holds every partial record of a batch until its missing punches
// are supplied. Records are keyed by sheet row.
type Workflow struct {
	items map[int]*Item
	order []int
}

// New registers partial records. Each moves straight to AwaitingCorrection.
func New(partial []attendance.Incomplete) *Workflow {
	w := &Workflow{items: make(map[int]*Item, len(partial))}
	for _, p := range partial {
		// Detected records are queued for correction as soon as they are seen.
		it := &Item{Record: p.Record, Missing: p.Missing, State: AwaitingCorrection}
		if _, dup := w.items[p.Record.Row]; !dup {
			w.order = append(w.order, p.Record.Row)
		}
		w.items[p.Record.Row] = it
	}
	sort.Ints(w.order)
	return w
}

// Supply merges a correction into the record at row. Supplying a field again
// overwrites the earlier value. The record becomes Corrected only once every
// missing field has a value.
func (w *Workflow) Supply(row int, c Correction) (State, error) {
	it, ok := w.items[row]
	if !ok {
		return 0, fmt.Errorf("supply row %d: %w", row, ErrUnknownRecord)
	}
	if it.State == Computed {
		return it.State, fmt.Errorf("supply row %d: %w", row, ErrAlreadyComputed)
	}
	if c.Entry == nil && c.Exit == nil {
		return it.State, fmt.Errorf("supply row %d: %w", row, ErrEmptyCorrection)
	}
	if c.Entry != nil && !it.missing(attendance.FieldEntry) {
		return it.State, fmt.Errorf("supply row %d entry: %w", row, ErrFieldNotMissing)
	}
	if c.Exit != nil && !it.missing(attendance.FieldExit) {
		return it.State, fmt.Errorf("supply row %d exit: %w", row, ErrFieldNotMissing)
	}

	if c.Entry != nil {
		v := *c.Entry
		it.Correction.Entry = &v
	}
	if c.Exit != nil {
		v := *c.Exit
		it.Correction.Exit = &v
	}
	if it.filled() {
		it.State = Corrected
	} else {
		it.State = AwaitingCorrection
	}
	return it.State, nil
}

// Pending counts records still waiting for input.
func (w *Workflow) Pending() int {
	n := 0
	for _, it := range w.items {
		if it.State == Detected || it.State == AwaitingCorrection {
			n++
		}
	}
	return n
}

// Ready reports whether batch totals may be produced.
func (w *Workflow) Ready() bool {
	return w.Pending() == 0
}

// Items returns a snapshot of every tracked record in row order.
func (w *Workflow) Items() []Item {
	out := make([]Item, 0, len(w.order))
	for _, row := range w.order {
		out = append(out, *w.items[row])
	}
	return out
}

// Waiting returns the records still blocking the batch, in row order.
func (w *Workflow) Waiting() []Item {
	var out []Item
	for _, it := range w.Items() {
		if it.State == Detected || it.State == AwaitingCorrection {
			out = append(out, it)
		}
	}
	return out
}

// Corrected returns patched copies of records ready for computation.
func (w *Workflow) Corrected() []attendance.DailyRecord {
	var out []attendance.DailyRecord
	for _, row := range w.order {
		if it := w.items[row]; it.State == Corrected {
			out = append(out, it.Patched())
		}
	}
	return out
}

// MarkComputed records that a corrected record went through the pay
// pipeline. It fails for any other state so a record is computed once.
func (w *Workflow) MarkComputed(row int) error {
	it, ok := w.items[row]
	if !ok {
		return fmt.Errorf("mark row %d computed: %w", row, ErrUnknownRecord)
	}
	switch it.State {
	case Corrected:
		it.State = Computed
		return nil
	case Computed:
		return fmt.Errorf("mark row %d computed: %w", row, ErrAlreadyComputed)
	default:
		return fmt.Errorf("mark row %d computed: %w", row, ErrNotCorrected)
	}
}

// Reopen moves computed records back to Corrected for an explicit
// recomputation.
func (w *Workflow) Reopen() {
	for _, it := range w.items {
		if it.State == Computed {
			it.State = Corrected
		}
	}
}
