package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Discounted returns unit * (1 - pct/100) when pct > 0, otherwise unit.
//
// Percentages above 100 are clamped so a bad discount can never produce a
// negative price.
func Discounted(unit, pct decimal.Decimal) decimal.Decimal {
	if !pct.IsPositive() {
		return unit
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return unit.Mul(hundred.Sub(pct)).Div(hundred)
}

// LineTotal returns Discounted(unit, pct) * qty.
func LineTotal(unit, pct decimal.Decimal, qty int) decimal.Decimal {
	return Discounted(unit, pct).Mul(decimal.NewFromInt(int64(qty)))
}

// Sum adds values without intermediate rounding.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
