package wage

import (
	"fmt"
	"math"
)

// FormatHM renders decimal hours as H:MM, carrying rounded minutes into
// the hour.
func FormatHM(h float64) string {
	sign := ""
	if h < 0 {
		sign = "-"
		h = -h
	}
	whole := int(h)
	minutes := int(math.Round((h - float64(whole)) * 60))
	if minutes >= 60 {
		whole += minutes / 60
		minutes %= 60
	}
	return fmt.Sprintf("%s%d:%02d", sign, whole, minutes)
}
