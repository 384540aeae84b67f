package render

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used for codes go-money does not know.
const DefaultCurrency = money.INR

// Money formats an amount in the currency's own notation, rounded to its minor unit.
func Money(amount decimal.Decimal, currency string) string {
	cur := lookupCurrency(currency)
	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

func lookupCurrency(code string) money.Currency {
	if cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code))); cur != nil {
		return *cur
	}
	return *money.GetCurrency(DefaultCurrency)
}

// Signed is Money with an explicit plus for gains.
func Signed(amount decimal.Decimal, currency string) string {
	if amount.IsPositive() {
		return "+" + Money(amount, currency)
	}
	return Money(amount, currency)
}

func Pct(pct decimal.Decimal) string {
	s := pct.StringFixed(2) + "%"
	if pct.IsPositive() {
		return "+" + s
	}
	return s
}

func Price(price decimal.Decimal) string {
	return price.StringFixed(2)
}
