package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders amount as dollars rounded half-up to cents, with comma
// thousands separators: 1234.5 → "$1,234.50".
func Format(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	s := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.Grow(len(whole) + len(whole)/3 + len(frac) + 3)
	if neg && s != "0.00" {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	rem := len(whole) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(whole[:rem])
	for i := rem; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// DiscountPercent is the whole-percent markdown from original to price, or 0
// when there is none.
func DiscountPercent(price, original decimal.Decimal) int {
	if !original.IsPositive() || !original.GreaterThan(price) {
		return 0
	}
	pct := original.Sub(price).Div(original).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}
