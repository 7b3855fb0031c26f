package wage

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// HolidaySet is an immutable set of calendar dates. Membership compares
// year, month and day.
type HolidaySet struct {
	days map[string]struct{}
}

func NewHolidaySet(dates ...time.Time) HolidaySet {
	days := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		days[d.Format(dateLayout)] = struct{}{}
	}
	return HolidaySet{days: days}
}

// ParseHolidays builds a set from YYYY-MM-DD strings. Blank values are ignored.
func ParseHolidays(values ...string) (HolidaySet, error) {
	dates := make([]time.Time, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return HolidaySet{}, fmt.Errorf("parse holiday %q: %w", v, err)
		}
		dates = append(dates, d)
	}
	return NewHolidaySet(dates...), nil
}

func (h HolidaySet) Contains(t time.Time) bool {
	_, ok := h.days[t.Format(dateLayout)]
	return ok
}

func (h HolidaySet) Len() int {
	return len(h.days)
}

// Dates returns the members as sorted YYYY-MM-DD strings.
func (h HolidaySet) Dates() []string {
	out := make([]string, 0, len(h.days))
	for d := range h.days {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
