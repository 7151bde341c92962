package receipt_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/safar/go-shop/internal/models"
	"github.com/safar/go-shop/internal/receipt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func scenarioOrder() *models.Order {
	couponID := int64(4)
	return &models.Order{
		ID: 17,
		Customer: models.Customer{
			FirstName:  "Ann",
			LastName:   "Smith",
			Email:      "ann@example.com",
			Address:    "1 Main St",
			PostalCode: "12345",
			City:       "Springfield",
		},
		CouponID: &couponID,
		Discount: 10,
		Coupon:   &models.Coupon{ID: couponID, Code: "SAVE10", Discount: 10},
		Items: []models.OrderItem{
			{ProductName: "Product A", Price: decimal.RequireFromString("10.00"), Quantity: 2},
			{ProductName: "Product B", Price: decimal.RequireFromString("5"), Quantity: 1},
		},
	}
}

func TestFormat(t *testing.T) {
	got := receipt.NewFormatter("My Shop", "$").Format(scenarioOrder())

	want := receipt.Receipt{
		Subject: "Order #17 at My Shop has been placed",
		Body: []string{
			"Dear Ann,",
			"",
			"Your order #17 totalling $22.50 has been placed and is being processed.",
			"Payment status: Awaiting payment.",
			"",
			"Order details:",
			"- Product A (x2): $20.00",
			"- Product B (x1): $5.00",
			"",
			"Subtotal before discount: $25.00",
			"Coupon applied: SAVE10 (10% off)",
			"Discount: -$2.50",
			"Total due: $22.50",
			"",
			"Delivery address: Springfield, 1 Main St, 12345",
			"",
			"Thank you for your purchase!",
			"Kind regards, the My Shop team.",
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Format() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatWithoutCoupon(t *testing.T) {
	o := scenarioOrder()
	o.Coupon = nil
	o.CouponID = nil
	o.Discount = 0
	o.Paid = true

	got := receipt.NewFormatter("My Shop", "€").Format(o)

	assert.Contains(t, got.Body, "Payment status: Paid.")
	assert.Contains(t, got.Body, "Total due: €25.00")
	for _, line := range got.Body {
		assert.NotContains(t, line, "Coupon applied")
		assert.NotContains(t, line, "Discount:")
	}
}

func TestFormatDeletedCouponKeepsDiscount(t *testing.T) {
	o := scenarioOrder()
	o.Coupon = nil
	o.CouponID = nil

	got := receipt.NewFormatter("My Shop", "$").Format(o)

	assert.Contains(t, got.Body, "Discount: -$2.50")
	assert.Contains(t, got.Body, "Total due: $22.50")
}
