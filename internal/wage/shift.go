package wage

import (
	"errors"
	"fmt"
	"time"
)

var ErrMalformedShift = errors.New("malformed shift")

// ShiftPolicy controls how a punch pair is turned into worked hours.
type ShiftPolicy struct {
	Window Window
	// CapExit truncates the exit to CapAt on the entry date.
	CapExit bool
	CapAt   TimeOfDay
}

// DefaultPolicy uses the premium window and leaves exits uncapped.
func DefaultPolicy() ShiftPolicy {
	return ShiftPolicy{Window: PremiumWindow, CapAt: At(22, 0)}
}

// Decomposition splits one day's shift into normal and premium hours.
type Decomposition struct {
	Start     time.Time
	End       time.Time
	Total     float64
	Normal    float64
	Premium   float64
	Overnight bool
	Capped    bool
}

// Decompose computes worked hours for one entry/exit pair. An exit earlier
// than the entry is read as the following day.
func Decompose(entry, exit time.Time, p ShiftPolicy) (Decomposition, error) {
	if entry.IsZero() || exit.IsZero() {
		return Decomposition{}, fmt.Errorf("%w: entry and exit are required", ErrMalformedShift)
	}
	if !p.Window.Valid() {
		return Decomposition{}, fmt.Errorf("%w: invalid premium window %s-%s", ErrMalformedShift, p.Window.Start, p.Window.End)
	}

	d := Decomposition{Start: entry, End: exit}
	if exit.Before(entry) {
		d.End = exit.AddDate(0, 0, 1)
		d.Overnight = true
	}
	if d.End.Before(d.Start) {
		return Decomposition{}, fmt.Errorf("%w: exit %s is more than a day before entry %s",
			ErrMalformedShift, exit.Format(time.DateTime), entry.Format(time.DateTime))
	}

	if p.CapExit {
		limit := p.CapAt.On(d.Start)
		if limit.Before(d.Start) {
			limit = d.Start
		}
		if d.End.After(limit) {
			d.End = limit
			d.Capped = true
		}
	}

	d.Total = hours(d.End.Sub(d.Start))
	d.Premium = Intersect(d.Start, d.End, p.Window)
	d.Normal = d.Total - d.Premium
	if d.Normal < 0 {
		d.Normal = 0
	}
	return d, nil
}
