package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Product struct {
	ID           int64           `json:"id"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Available    bool            `json:"available"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Coupon struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	ValidFrom time.Time `json:"valid_from"`
	ValidTo   time.Time `json:"valid_to"`
	Discount  int       `json:"discount"`
	Active    bool      `json:"active"`
}

// Customer holds the checkout form fields copied onto an order.
type Customer struct {
	FirstName  string `json:"first_name" validate:"required,max=50"`
	LastName   string `json:"last_name" validate:"required,max=50"`
	Email      string `json:"email" validate:"required,max=254,email"`
	Address    string `json:"address" validate:"required,max=250"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	City       string `json:"city" validate:"required,max=100"`
}

type Order struct {
	ID int64 `json:"id"`
	Customer
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Paid      bool      `json:"paid"`
	CouponID  *int64    `json:"coupon_id,omitempty"`
	// Discount is the coupon percent frozen at creation.
	Discount int         `json:"discount"`
	Coupon   *Coupon     `json:"coupon,omitempty"`
	Items    []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

func (i OrderItem) Cost() decimal.Decimal {
	return LineTotal(i.Price, i.Quantity)
}

// TotalBeforeDiscount sums the item snapshots.
func (o *Order) TotalBeforeDiscount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Cost())
	}
	return total
}

func (o *Order) DiscountAmount() decimal.Decimal {
	return DiscountAmount(o.TotalBeforeDiscount(), o.Discount)
}

func (o *Order) TotalCost() decimal.Decimal {
	return o.TotalBeforeDiscount().Sub(o.DiscountAmount())
}
