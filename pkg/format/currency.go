// Package format renders monetary amounts and per-mile figures for display.
package format

import (
	"math"

	"github.com/iwvelando/vehicle-tco/pkg/constants"
	"github.com/iwvelando/vehicle-tco/pkg/projection"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a whole-unit amount with the symbol and thousands
// separators (e.g., "£22,000" or "-£1,234"). Halves round away from zero.
func Currency(symbol string, amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return constants.UnavailablePlaceholder
	}
	whole := decimal.NewFromFloat(math.Abs(amount)).Round(0).IntPart()
	formatted := printer.Sprintf("%d", whole)
	if amount < 0 && whole != 0 {
		return "-" + symbol + formatted
	}
	return symbol + formatted
}

// CurrencyCents is like Currency but keeps two decimals (e.g., "£1,363.83").
func CurrencyCents(symbol string, amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return constants.UnavailablePlaceholder
	}
	formatted := NumericCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-" + symbol + formatted
	}
	return symbol + formatted
}

// NumericCurrency returns a two-decimal amount without a currency symbol but
// with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	rounded := decimal.NewFromFloat(amount).Round(constants.DecimalPrecision).InexactFloat64()
	return printer.Sprintf("%.2f", rounded)
}

// PerMile returns a cost per mile to two decimals, or the placeholder when
// it is unavailable.
func PerMile(value projection.PerMile) string {
	if !value.Available {
		return constants.UnavailablePlaceholder
	}
	return NumericCurrency(value.Value)
}

// Percent renders a fractional rate such as 0.125 as "12.5%".
func Percent(rate float64) string {
	return printer.Sprintf("%.1f%%", rate*constants.PercentageMultiplier)
}
