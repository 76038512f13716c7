package presenter

import (
	"math"

	"github.com/shopspring/decimal"

	"policydash/internal/model"
)

// NotAvailable is shown when a percent change cannot be computed.
const NotAvailable = "N/A"

var hundred = decimal.NewFromInt(100)

// PercentChange returns (last/first - 1) * 100 rounded to two places. ok is
// false when the series has fewer than two points or the first value is zero.
func PercentChange(s model.Series) (decimal.Decimal, bool) {
	if s.Len() < 2 {
		return decimal.Zero, false
	}
	first, _ := s.First()
	last, _ := s.Last()
	if !finite(first.Value) || !finite(last.Value) || first.Value == 0 {
		return decimal.Zero, false
	}

	ratio := decimal.NewFromFloat(last.Value).Div(decimal.NewFromFloat(first.Value))
	return ratio.Sub(decimal.NewFromInt(1)).Mul(hundred).Round(2), true
}

// FormatPercentChange renders the change with an explicit sign, e.g. "+3.45%"
// or "-2.10%". A change that rounds to zero is "0.00%".
func FormatPercentChange(s model.Series) string {
	change, ok := PercentChange(s)
	if !ok {
		return NotAvailable
	}
	switch {
	case change.IsPositive():
		return "+" + change.StringFixed(2) + "%"
	case change.IsNegative():
		return change.StringFixed(2) + "%"
	default:
		return "0.00%"
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
