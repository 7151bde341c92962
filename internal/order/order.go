// Package order turns a cart into a persisted order.
//
// The order row and all of its items are written in one transaction, and the
// coupon's percentage is copied onto the order so later coupon edits never
// change what the customer was charged.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/safar/go-shop/internal/cart"
	"github.com/safar/go-shop/internal/models"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNoOrderInSession = errors.New("no order in session")
)

// Tx writes within a single database transaction.
type Tx interface {
	CreateOrder(ctx context.Context, order models.Order) (*models.Order, error)
	CreateOrderItem(ctx context.Context, orderID int64, item models.OrderItem) (*models.OrderItem, error)
}

type Repository interface {
	// InTx runs fn in a transaction. fn may run more than once when the
	// transaction is retried, so it must not keep state between calls.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
}

// Cart is the part of the cart engine the builder reads.
type Cart interface {
	ItemCount() int
	Items(ctx context.Context) ([]cart.LineItem, error)
	ValidateCoupon(ctx context.Context, now time.Time) (cart.CouponResolution, error)
}

type Builder struct {
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewBuilder(repo Repository, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{repo: repo, now: time.Now, logger: logger}
}

// Create persists an order for customer from the cart contents. The coupon is
// re-validated first; a stale one is dropped and the order carries no
// discount. The cart itself is left untouched.
func (b *Builder) Create(ctx context.Context, customer models.Customer, c Cart) (*models.Order, error) {
	if c.ItemCount() == 0 {
		return nil, ErrEmptyCart
	}

	res, err := c.ValidateCoupon(ctx, b.now())
	if err != nil {
		return nil, fmt.Errorf("validate coupon: %w", err)
	}

	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	draft := models.Order{Customer: customer}
	if res.Coupon != nil {
		id := res.Coupon.ID
		draft.CouponID = &id
		draft.Discount = res.Coupon.Discount
		draft.Coupon = res.Coupon
	}

	var created *models.Order
	err = b.repo.InTx(ctx, func(tx Tx) error {
		o, err := tx.CreateOrder(ctx, draft)
		if err != nil {
			return err
		}

		o.Items = make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			oi, err := tx.CreateOrderItem(ctx, o.ID, models.OrderItem{
				ProductID:   item.Product.ID,
				ProductName: item.Product.Name,
				Price:       item.Price,
				Quantity:    item.Quantity,
			})
			if err != nil {
				return err
			}
			o.Items = append(o.Items, *oi)
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	b.logger.Info("order created",
		zap.Int64("order_id", created.ID),
		zap.Int("items", len(created.Items)),
		zap.Int("discount", created.Discount))

	return created, nil
}
