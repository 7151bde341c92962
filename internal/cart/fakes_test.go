package cart_test

import (
	"context"
	"sync"

	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/models"
	"github.com/shopspring/decimal"
)

type fakeCatalog struct {
	mu       sync.Mutex
	products map[int64]models.Product
	lookups  int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: make(map[int64]models.Product)}
}

func (f *fakeCatalog) put(id int64, name, price string) *models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := models.Product{ID: id, Name: name, Slug: name, Price: decimal.RequireFromString(price), Available: true}
	f.products[id] = p
	return &p
}

func (f *fakeCatalog) delete(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
}

func (f *fakeCatalog) GetProductsByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	var out []models.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCoupons struct {
	coupons map[int64]*models.Coupon
	err     error
}

func newFakeCoupons() *fakeCoupons {
	return &fakeCoupons{coupons: make(map[int64]*models.Coupon)}
}

func (f *fakeCoupons) GetCoupon(_ context.Context, id int64) (*models.Coupon, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.coupons[id]
	if !ok {
		return nil, database.ErrCouponNotFound
	}
	cp := *c
	return &cp, nil
}
