package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders decimals for display in one currency and locale.
type Formatter struct {
	unit    currency.Unit
	symbol  string
	places  int32
	printer *message.Printer
}

// NewFormatter builds a Formatter for an ISO 4217 currency code and a BCP 47
// locale. The number of fractional digits is the currency's cash scale.
// An empty symbol falls back to the ISO code.
func NewFormatter(code, symbol, locale string) (*Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	scale, _ := currency.Cash.Rounding(unit)
	if symbol == "" {
		symbol = unit.String()
	}
	return &Formatter{
		unit:    unit,
		symbol:  symbol,
		places:  int32(scale),
		printer: message.NewPrinter(tag),
	}, nil
}

// Currency returns the ISO code the formatter renders.
func (f *Formatter) Currency() string {
	return f.unit.String()
}

// Places returns the number of fractional digits shown.
func (f *Formatter) Places() int32 {
	return f.places
}

// Round rounds half away from zero to the display scale.
func (f *Formatter) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(f.places)
}

// Format renders d as "<symbol> <grouped amount>", e.g. "Rp 1.250.000".
func (f *Formatter) Format(d decimal.Decimal) string {
	rounded := f.Round(d)
	if f.places == 0 {
		return f.symbol + " " + f.printer.Sprintf("%d", rounded.IntPart())
	}
	return f.symbol + " " + f.printer.Sprint(number.Decimal(rounded.InexactFloat64(), number.Scale(int(f.places))))
}
