// Package receipt renders the confirmation message for a placed order.
package receipt

import (
	"fmt"

	"github.com/safar/go-shop/internal/models"
	"github.com/shopspring/decimal"
)

type Receipt struct {
	Subject string   `json:"subject"`
	Body    []string `json:"body"`
}

type Formatter struct {
	ShopName       string
	CurrencySymbol string
}

func NewFormatter(shopName, currencySymbol string) Formatter {
	return Formatter{ShopName: shopName, CurrencySymbol: currencySymbol}
}

func (f Formatter) money(amount decimal.Decimal) string {
	return f.CurrencySymbol + models.FormatMoney(amount)
}

// Format derives the receipt from a loaded order. The order must carry its
// items; the coupon is optional. Output depends on nothing else.
func (f Formatter) Format(order *models.Order) Receipt {
	subtotal := order.TotalBeforeDiscount()
	discount := order.DiscountAmount()
	total := subtotal.Sub(discount)

	paid := "Awaiting payment"
	if order.Paid {
		paid = "Paid"
	}

	lines := []string{
		fmt.Sprintf("Dear %s,", order.FirstName),
		"",
		fmt.Sprintf("Your order #%d totalling %s has been placed and is being processed.", order.ID, f.money(total)),
		fmt.Sprintf("Payment status: %s.", paid),
		"",
		"Order details:",
	}

	for _, item := range order.Items {
		lines = append(lines, fmt.Sprintf("- %s (x%d): %s", item.ProductName, item.Quantity, f.money(item.Cost())))
	}

	lines = append(lines,
		"",
		fmt.Sprintf("Subtotal before discount: %s", f.money(subtotal)),
	)
	if order.Coupon != nil {
		lines = append(lines, fmt.Sprintf("Coupon applied: %s (%d%% off)", order.Coupon.Code, order.Discount))
	}
	if discount.IsPositive() {
		lines = append(lines, fmt.Sprintf("Discount: -%s", f.money(discount)))
	}
	lines = append(lines,
		fmt.Sprintf("Total due: %s", f.money(total)),
		"",
		fmt.Sprintf("Delivery address: %s, %s, %s", order.City, order.Address, order.PostalCode),
		"",
		"Thank you for your purchase!",
		fmt.Sprintf("Kind regards, the %s team.", f.ShopName),
	)

	return Receipt{
		Subject: fmt.Sprintf("Order #%d at %s has been placed", order.ID, f.ShopName),
		Body:    lines,
	}
}
