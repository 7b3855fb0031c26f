package store

import (
	"time"

	"github.com/shopspring/decimal"
)

type Setting struct {
	Key   string
	Value string
}

type Holiday struct {
	Date      time.Time
	Name      string
	CreatedAt time.Time
}

// PaySettings is the typed view of the pay-related settings rows.
type PaySettings struct {
	HourlyRate     decimal.Decimal `validate:"gte=0"`
	PremiumPercent decimal.Decimal `validate:"gte=0"` // fraction, 0.30 = 30%
	Formula        string          `validate:"oneof=multiplicative additive"`
	CapExit        bool
	ZeroTimeUnset  bool
	Locale         string `validate:"required,bcp47_language_tag"`
}
