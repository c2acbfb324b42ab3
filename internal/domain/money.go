package domain

import (
	"github.com/shopspring/decimal"
)

// FormatCents renders integer cents as a two-decimal string ("1999" ->
// "19.99"). All arithmetic happens in cents; this is display only.
func FormatCents(cents int32) string {
	return decimal.NewFromInt32(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
