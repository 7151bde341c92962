package store_test

import (
	"context"
	"time"

	"github.com/safar/go-shop/internal/cart"
	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/models"
	"github.com/safar/go-shop/internal/order"
	"github.com/safar/go-shop/internal/session"
	"github.com/safar/go-shop/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *storeSuite) TestCheckoutSnapshotsPricesAndDiscount() {
	t := s.T()
	ctx := context.Background()
	now := time.Now().UTC()

	c := s.category("tea")
	a := s.product(c.ID, "Product A", "10.00", true)
	b := s.product(c.ID, "Product B", "5.00", true)
	coupon := s.coupon("SAVE10", 10, now.Add(-time.Hour), now.Add(time.Hour))

	sess := session.New("checkout")
	engine := cart.New(cart.DefaultConfig(), sess, s.store, s.store)
	require.NoError(t, engine.Add(a, 2, false))
	require.NoError(t, engine.Add(b, 1, false))
	engine.BindCoupon(coupon.ID)

	summary, err := engine.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "25.00", models.FormatMoney(summary.Subtotal))
	assert.Equal(t, "2.50", models.FormatMoney(summary.Discount))
	assert.Equal(t, "22.50", models.FormatMoney(summary.Total))

	// Catalog edits after the products went into the cart.
	require.NoError(t, store.UpdateProductPrice(ctx, s.db, a.ID, decimal.RequireFromString("11.00")))

	created, err := order.NewBuilder(s.store, nil).Create(ctx, randomCustomer(), engine)
	require.NoError(t, err)

	require.NoError(t, store.UpdateProductPrice(ctx, s.db, b.ID, decimal.RequireFromString("6.00")))

	loaded, err := s.store.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.Discount)
	require.NotNil(t, loaded.Coupon)
	assert.Equal(t, "SAVE10", loaded.Coupon.Code)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "Product A", loaded.Items[0].ProductName)
	assert.Equal(t, "10.00", models.FormatMoney(loaded.Items[0].Price))
	assert.Equal(t, "5.00", models.FormatMoney(loaded.Items[1].Price))
	assert.Equal(t, "22.50", models.FormatMoney(loaded.TotalCost()))

	// The frozen percent outlives the coupon row.
	require.NoError(t, store.DeleteCoupon(ctx, s.db, coupon.ID))
	loaded, err = s.store.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.CouponID)
	assert.Nil(t, loaded.Coupon)
	assert.Equal(t, "22.50", models.FormatMoney(loaded.TotalCost()))
}

func (s *storeSuite) TestFailedItemInsertRollsBackOrder() {
	t := s.T()
	ctx := context.Background()

	err := s.store.InTx(ctx, func(tx order.Tx) error {
		o, err := tx.CreateOrder(ctx, models.Order{Customer: randomCustomer()})
		if err != nil {
			return err
		}
		_, err = tx.CreateOrderItem(ctx, o.ID, models.OrderItem{
			ProductID: 424242,
			Price:     decimal.RequireFromString("1.00"),
			Quantity:  1,
		})
		return err
	})
	require.Error(t, err)

	count, err := store.CountOrders(ctx, s.db)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func (s *storeSuite) TestOrderConstraints() {
	t := s.T()
	ctx := context.Background()

	_, err := store.CreateOrder(ctx, s.db, models.Order{Customer: randomCustomer(), Discount: 120})
	assert.Error(t, err)

	o, err := store.CreateOrder(ctx, s.db, models.Order{Customer: randomCustomer()})
	require.NoError(t, err)
	_, err = store.CreateOrderItem(ctx, s.db, o.ID, models.OrderItem{Quantity: 0})
	assert.Error(t, err)
}

func (s *storeSuite) TestMarkOrderPaid() {
	t := s.T()
	ctx := context.Background()

	o, err := store.CreateOrder(ctx, s.db, models.Order{Customer: randomCustomer()})
	require.NoError(t, err)
	assert.False(t, o.Paid)

	require.NoError(t, store.MarkOrderPaid(ctx, s.db, o.ID))
	loaded, err := s.store.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Paid)
	assert.Empty(t, loaded.Items)

	assert.ErrorIs(t, store.MarkOrderPaid(ctx, s.db, 999999), database.ErrOrderNotFound)
	_, err = s.store.GetOrder(ctx, 999999)
	assert.ErrorIs(t, err, database.ErrOrderNotFound)
}
