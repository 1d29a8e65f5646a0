package scan

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencySymbol prefixes every displayed price.
const CurrencySymbol = "₹"

// PriceFormatter renders prices with locale digit grouping.
type PriceFormatter struct {
	printer *message.Printer
}

// NewPriceFormatter returns a formatter for the given BCP 47 locale.
// Unknown or empty locales fall back to English.
func NewPriceFormatter(locale string) *PriceFormatter {
	tag := language.English
	if locale != "" {
		if t, err := language.Parse(locale); err == nil {
			tag = t
		}
	}
	return &PriceFormatter{printer: message.NewPrinter(tag)}
}

// Format returns e.g. "₹1,299" or "₹1,299.5".
func (f *PriceFormatter) Format(p Price) string {
	return CurrencySymbol + f.Number(p)
}

// Number returns the grouped number without the currency symbol.
func (f *PriceFormatter) Number(p Price) string {
	v := float64(p)
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return f.printer.Sprintf("%d", int64(v))
	}
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

var defaultFormatter = NewPriceFormatter("en")

// FormatPrice formats with the English locale.
func FormatPrice(p Price) string {
	return defaultFormatter.Format(p)
}
