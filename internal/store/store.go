package store

import (
	"context"
	"database/sql"

	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/models"
	"github.com/safar/go-shop/internal/order"
)

// Store binds the package's query functions to a connection pool so they can
// serve the cart, coupon and order packages.
type Store struct {
	db     *sql.DB
	txOpts database.TxOptions
}

func New(db *sql.DB) *Store {
	return &Store{db: db, txOpts: database.DefaultTxOptions()}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	return GetProductsByIDs(ctx, s.db, ids)
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return GetProduct(ctx, s.db, id)
}

func (s *Store) GetAvailableProduct(ctx context.Context, id int64, slug string) (*models.Product, error) {
	return GetAvailableProduct(ctx, s.db, id, slug)
}

func (s *Store) GetCoupon(ctx context.Context, id int64) (*models.Coupon, error) {
	return GetCoupon(ctx, s.db, id)
}

func (s *Store) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return GetCouponByCode(ctx, s.db, code)
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return GetOrder(ctx, s.db, id)
}

// InTx runs fn inside a retried transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx order.Tx) error) error {
	return database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		return fn(txStore{tx: tx})
	})
}

type txStore struct {
	tx *sql.Tx
}

func (t txStore) CreateOrder(ctx context.Context, o models.Order) (*models.Order, error) {
	return CreateOrder(ctx, t.tx, o)
}

func (t txStore) CreateOrderItem(ctx context.Context, orderID int64, item models.OrderItem) (*models.OrderItem, error) {
	return CreateOrderItem(ctx, t.tx, orderID, item)
}
