package report

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders money and counts for one currency and locale.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter builds a Formatter for an ISO 4217 code and a BCP 47 locale.
func NewFormatter(code, locale string) (*Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", locale, err)
	}
	return &Formatter{printer: message.NewPrinter(tag), unit: unit}, nil
}

// Money formats v with the currency symbol and two decimals.
func (f *Formatter) Money(v float64) string {
	return f.printer.Sprintf("%v %v", currency.Symbol(f.unit), number.Decimal(v, number.Scale(2)))
}

// Count formats an integer with locale grouping.
func (f *Formatter) Count(n int) string {
	return f.printer.Sprint(number.Decimal(n))
}

// Decimal formats v with the given number of decimals.
func (f *Formatter) Decimal(v float64, scale int) string {
	return f.printer.Sprint(number.Decimal(v, number.Scale(scale)))
}
