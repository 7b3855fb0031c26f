package wage

import "time"

// Window is a daily time-of-day interval.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// PremiumWindow is the surcharged 20:00-22:00 window.
var PremiumWindow = Window{Start: At(20, 0), End: At(22, 0)}

// Valid reports whether the window is a non-empty interval inside one day.
func (w Window) Valid() bool {
	return w.Start >= 0 && w.Start < w.End && w.End <= endOfDay
}

// Intersect returns the hours of [start, end] that fall inside w, with w
// anchored on start's calendar date. Overnight shifts must already have end
// moved to the following day.
func Intersect(start, end time.Time, w Window) float64 {
	windowStart := w.Start.On(start)
	windowEnd := w.End.On(start)

	from := start
	if windowStart.After(from) {
		from = windowStart
	}
	to := end
	if windowEnd.Before(to) {
		to = windowEnd
	}
	if !from.Before(to) {
		return 0
	}
	return hours(to.Sub(from))
}

func hours(d time.Duration) float64 {
	return d.Truncate(time.Second).Seconds() / 3600
}
