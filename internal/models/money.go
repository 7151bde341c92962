package models

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of fractional digits kept for amounts.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// DiscountAmount returns percent% of subtotal rounded half away from zero to
// MoneyPlaces. Carts, orders and receipts all derive discounts here.
func DiscountAmount(subtotal decimal.Decimal, percent int) decimal.Decimal {
	if percent <= 0 || subtotal.Sign() <= 0 {
		return decimal.Zero
	}
	if percent > 100 {
		percent = 100
	}
	return subtotal.Mul(decimal.NewFromInt(int64(percent))).Div(hundred).Round(MoneyPlaces)
}

// FormatMoney renders an amount with exactly MoneyPlaces decimals.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(MoneyPlaces)
}
