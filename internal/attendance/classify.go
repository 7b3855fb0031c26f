package attendance

import (
	"fmt"
	"strings"
)

// Field names a punch column that can be missing.
type Field string

const (
	FieldEntry Field = "entry"
	FieldExit  Field = "exit"
)

// Incomplete is a record missing exactly one punch.
type Incomplete struct {
	Record  DailyRecord
	Missing []Field
}

func (i Incomplete) Describe() string {
	names := make([]string, len(i.Missing))
	for n, f := range i.Missing {
		names[n] = string(f)
	}
	return fmt.Sprintf("row %d (%s, %s): missing %s",
		i.Record.Row, i.Record.Employee, i.Record.Date.Format("2006-01-02"), strings.Join(names, ", "))
}

// Classification splits a batch by punch completeness. Empty records are
// non-working days and take no further part in payroll.
type Classification struct {
	Complete []DailyRecord
	Partial  []Incomplete
	Empty    []DailyRecord
}

// Classify sorts records without modifying them.
func Classify(records []DailyRecord) Classification {
	var c Classification
	for _, r := range records {
		switch missing := r.Missing(); len(missing) {
		case 0:
			c.Complete = append(c.Complete, r)
		case 1:
			c.Partial = append(c.Partial, Incomplete{Record: r, Missing: missing})
		default:
			c.Empty = append(c.Empty, r)
		}
	}
	return c
}
