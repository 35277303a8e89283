package cashbook

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used to display amounts when none is configured.
const DefaultCurrency = "USD"

// Money is an amount paired with the currency used to display it.
//
// A ledger holds a single currency, Money only exists at display time.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns Money for value in currency.
func M(value decimal.Decimal, currency string) Money {
	return Money{value: value, cur: strings.ToUpper(strings.TrimSpace(currency))}
}

// String formats the value with the currency's symbol, separators and
// fraction digits, e.g. "$1,000.00". Unknown currencies fall back to
// "1000.00 XYZ".
func (m Money) String() string {
	cur := money.GetCurrency(m.cur)
	if cur == nil {
		s := m.value.StringFixed(2)
		if m.cur == "" {
			return s
		}
		return s + " " + m.cur
	}
	minor := m.value.Shift(int32(cur.Fraction)).Round(0)
	if minor.BigInt().IsInt64() {
		return cur.Formatter().Format(minor.IntPart())
	}
	return formatMinor(minor, cur)
}

// formatMinor lays out minor units like money.Formatter.Format does, for
// amounts that overflow int64.
func formatMinor(minor decimal.Decimal, cur *money.Currency) string {
	digits := minor.Abs().String()
	if len(digits) <= cur.Fraction {
		digits = strings.Repeat("0", cur.Fraction-len(digits)+1) + digits
	}
	whole, frac := digits[:len(digits)-cur.Fraction], digits[len(digits)-cur.Fraction:]

	if cur.Thousand != "" {
		var b strings.Builder
		for i, r := range whole {
			if i > 0 && (len(whole)-i)%3 == 0 {
				b.WriteString(cur.Thousand)
			}
			b.WriteRune(r)
		}
		whole = b.String()
	}
	if cur.Fraction > 0 {
		whole += cur.Decimal + frac
	}

	s := strings.Replace(cur.Template, "1", whole, 1)
	s = strings.Replace(s, "$", cur.Grapheme, 1)
	if minor.IsNegative() {
		s = "-" + s
	}
	return s
}

// SignedString is like String with an explicit "+" on positive values.
func (m Money) SignedString() string {
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}
