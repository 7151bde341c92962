package order_test

import (
	"context"
	"errors"
	"sync"

	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/models"
	"github.com/safar/go-shop/internal/order"
	"github.com/shopspring/decimal"
)

var errInsert = errors.New("insert failed")

type catalog map[int64]models.Product

func (c catalog) GetProductsByIDs(_ context.Context, ids []int64) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := c[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c catalog) put(id int64, name, price string) *models.Product {
	p := models.Product{ID: id, Name: name, Slug: name, Price: decimal.RequireFromString(price), Available: true}
	c[id] = p
	return &p
}

type coupons map[int64]*models.Coupon

func (c coupons) GetCoupon(_ context.Context, id int64) (*models.Coupon, error) {
	cp, ok := c[id]
	if !ok {
		return nil, database.ErrCouponNotFound
	}
	found := *cp
	return &found, nil
}

// fakeRepo commits a transaction's writes only when fn succeeds.
type fakeRepo struct {
	mu sync.Mutex

	orders      map[int64]*models.Order
	nextOrderID int64
	nextItemID  int64

	// failItemAt fails the nth item insert of an attempt, counting from 1.
	failItemAt int

	// transientAttempts makes the first n attempts fail and be retried.
	transientAttempts int
	attempts          int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[int64]*models.Order)}
}

type fakeTx struct {
	repo    *fakeRepo
	failAt  int
	items   int
	staged  *models.Order
	written []models.OrderItem
}

func (t *fakeTx) CreateOrder(_ context.Context, o models.Order) (*models.Order, error) {
	t.repo.nextOrderID++
	created := o
	created.ID = t.repo.nextOrderID
	created.Items = nil
	t.staged = &created
	out := created
	return &out, nil
}

func (t *fakeTx) CreateOrderItem(_ context.Context, orderID int64, item models.OrderItem) (*models.OrderItem, error) {
	t.items++
	if t.failAt > 0 && t.items == t.failAt {
		return nil, errInsert
	}
	t.repo.nextItemID++
	created := item
	created.ID = t.repo.nextItemID
	created.OrderID = orderID
	t.written = append(t.written, created)
	return &created, nil
}

func (r *fakeRepo) InTx(ctx context.Context, fn func(tx order.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		r.attempts++
		failAt := r.failItemAt
		transient := r.attempts <= r.transientAttempts
		if transient {
			failAt = 1
		}

		tx := &fakeTx{repo: r, failAt: failAt}
		err := fn(tx)
		if err != nil {
			if transient {
				continue
			}
			return err
		}

		if tx.staged != nil {
			committed := *tx.staged
			committed.Items = tx.written
			r.orders[committed.ID] = &committed
		}
		return nil
	}
}

func (r *fakeRepo) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, database.ErrOrderNotFound
	}
	out := *o
	out.Items = append([]models.OrderItem(nil), o.Items...)
	return &out, nil
}
