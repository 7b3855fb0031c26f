package wage

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock offset from midnight. 24:00 is allowed and
// means the end of the anchored day.
type TimeOfDay time.Duration

const endOfDay = TimeOfDay(24 * time.Hour)

// At builds a TimeOfDay from an hour and minute.
func At(hour, minute int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// ClockOf returns the wall-clock part of t.
func ClockOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

// On anchors the time of day to the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, day.Location()).Add(time.Duration(t))
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	return fmt.Sprintf("%02d:%02d", h, m)
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04:05 PM",
	"3:04PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// ParseTimeOfDay reads a punch time. Accepted forms are HH:MM, HH:MM:SS,
// HH.MM, 12-hour clocks with AM/PM and full datetime strings (the date part
// is discarded).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" || s == "24:00:00" {
		return endOfDay, nil
	}
	if IsDottedClock(s) {
		s = strings.Replace(s, ".", ":", 1)
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return ClockOf(t), nil
		}
	}
	return 0, fmt.Errorf("unrecognised time %q", s)
}

// IsDottedClock reports whether s has the H.MM or HH.MM shape.
func IsDottedClock(s string) bool {
	i := strings.IndexByte(s, '.')
	if i < 1 || i > 2 || len(s)-i-1 != 2 {
		return false
	}
	for j, r := range s {
		if j == i {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
