package main

import (
	"time"

	"github.com/safar/go-shop/internal/cart"
	"github.com/safar/go-shop/internal/models"
	"github.com/safar/go-shop/internal/receipt"
)

// Amounts leave the API as strings with exactly two decimals.

type productView struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"category_id"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Available   bool   `json:"available"`
}

func newProductView(p models.Product) productView {
	return productView{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Category:    p.CategoryName,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       models.FormatMoney(p.Price),
		Available:   p.Available,
	}
}

func newProductViews(products []models.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}
	return views
}

type couponView struct {
	Code     string `json:"code"`
	Discount int    `json:"discount"`
}

func newCouponView(c *models.Coupon) *couponView {
	if c == nil {
		return nil
	}
	return &couponView{Code: c.Code, Discount: c.Discount}
}

type cartItemView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Total     string `json:"total"`
}

type cartView struct {
	Items         []cartItemView `json:"items"`
	ItemCount     int            `json:"item_count"`
	Subtotal      string         `json:"subtotal"`
	Coupon        *couponView    `json:"coupon,omitempty"`
	CouponCleared bool           `json:"coupon_cleared,omitempty"`
	Discount      string         `json:"discount"`
	Total         string         `json:"total"`
}

func newCartView(s cart.Summary) cartView {
	items := make([]cartItemView, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, cartItemView{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Slug:      item.Product.Slug,
			Quantity:  item.Quantity,
			Price:     models.FormatMoney(item.Price),
			Total:     models.FormatMoney(item.Total),
		})
	}

	return cartView{
		Items:         items,
		ItemCount:     s.ItemCount,
		Subtotal:      models.FormatMoney(s.Subtotal),
		Coupon:        newCouponView(s.Coupon),
		CouponCleared: s.CouponCleared,
		Discount:      models.FormatMoney(s.Discount),
		Total:         models.FormatMoney(s.Total),
	}
}

type orderItemView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Cost      string `json:"cost"`
}

type orderView struct {
	ID int64 `json:"id"`
	models.Customer
	CreatedAt       time.Time       `json:"created_at"`
	Paid            bool            `json:"paid"`
	Coupon          *couponView     `json:"coupon,omitempty"`
	DiscountPercent int             `json:"discount_percent"`
	Items           []orderItemView `json:"items"`
	Subtotal        string          `json:"subtotal"`
	Discount        string          `json:"discount"`
	Total           string          `json:"total"`
}

func newOrderView(o *models.Order) orderView {
	items := make([]orderItemView, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemView{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			Price:     models.FormatMoney(item.Price),
			Cost:      models.FormatMoney(item.Cost()),
		})
	}

	return orderView{
		ID:              o.ID,
		Customer:        o.Customer,
		CreatedAt:       o.CreatedAt,
		Paid:            o.Paid,
		Coupon:          newCouponView(o.Coupon),
		DiscountPercent: o.Discount,
		Items:           items,
		Subtotal:        models.FormatMoney(o.TotalBeforeDiscount()),
		Discount:        models.FormatMoney(o.DiscountAmount()),
		Total:           models.FormatMoney(o.TotalCost()),
	}
}

type confirmationView struct {
	Order   *orderView       `json:"order"`
	Receipt *receipt.Receipt `json:"receipt,omitempty"`
	Notice  string           `json:"notice,omitempty"`
}
