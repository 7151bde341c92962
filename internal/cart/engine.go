// Package cart keeps a visitor's shopping cart in their session and prices it.
//
// Lines remember the unit price seen when a product was first added, so later
// catalog price changes never reach an open cart. A bound coupon is stored by
// id only and re-validated every time a discount is computed.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/safar/go-shop/internal/coupon"
	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/models"
	"github.com/safar/go-shop/internal/session"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultSessionKey = "cart"
	DefaultCouponKey  = "coupon_id"
)

type Config struct {
	// SessionKey names the session value holding the cart blob.
	SessionKey string
	// CouponKey names the session value holding the bound coupon id.
	CouponKey string
	// MaxQuantity caps a single line's quantity; 0 means no cap.
	MaxQuantity int
}

func DefaultConfig() Config {
	return Config{
		SessionKey: DefaultSessionKey,
		CouponKey:  DefaultCouponKey,
	}
}

// Catalog resolves cart lines to products. Unknown ids are simply absent
// from the result.
type Catalog interface {
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
}

// Coupons returns database.ErrCouponNotFound for unknown ids.
type Coupons interface {
	GetCoupon(ctx context.Context, id int64) (*models.Coupon, error)
}

// LineItem is a cart line joined with its current catalog product.
type LineItem struct {
	Product  models.Product
	Price    decimal.Decimal
	Quantity int
	Total    decimal.Decimal
}

// CouponResolution is the result of re-validating the bound coupon.
type CouponResolution struct {
	Coupon *models.Coupon
	// Cleared is true when a stale binding was removed from the session.
	Cleared bool
}

// Summary is the priced view of a cart.
type Summary struct {
	Items         []LineItem
	ItemCount     int
	Subtotal      decimal.Decimal
	Coupon        *models.Coupon
	CouponCleared bool
	Discount      decimal.Decimal
	Total         decimal.Decimal
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

type Engine struct {
	cfg     Config
	sess    *session.Session
	catalog Catalog
	coupons Coupons
	now     func() time.Time
	logger  *zap.Logger

	cart     *Cart
	couponID *int64
}

// New loads the cart stored in sess. A blob that fails validation is dropped
// and the cart starts empty.
func New(cfg Config, sess *session.Session, catalog Catalog, coupons Coupons, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		sess:    sess,
		catalog: catalog,
		coupons: coupons,
		now:     time.Now,
		logger:  zap.NewNop(),
		cart:    newCart(),
	}
	for _, opt := range opts {
		opt(e)
	}

	stored := newCart()
	ok, err := sess.Get(cfg.SessionKey, stored)
	switch {
	case err != nil:
		e.logger.Warn("discarding malformed cart",
			zap.String("session_id", sess.ID),
			zap.Error(err))
		sess.Delete(cfg.SessionKey)
	case ok:
		e.cart = stored
	}

	var couponID int64
	ok, err = sess.Get(cfg.CouponKey, &couponID)
	switch {
	case err != nil:
		e.logger.Warn("discarding malformed coupon binding",
			zap.String("session_id", sess.ID),
			zap.Error(err))
		sess.Delete(cfg.CouponKey)
	case ok:
		e.couponID = &couponID
	}

	return e
}

// Add puts quantity units of product in the cart. With override the line's
// quantity is replaced instead of incremented. The unit price is captured
// only when the product is not in the cart yet.
func (e *Engine) Add(product *models.Product, quantity int, override bool) error {
	if product == nil {
		return fmt.Errorf("add to cart: nil product")
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	next := quantity
	line, exists := e.cart.lines[product.ID]
	if exists && !override {
		next += line.Quantity
	}
	if e.cfg.MaxQuantity > 0 && next > e.cfg.MaxQuantity {
		return fmt.Errorf("%w: %d > %d", ErrQuantityLimit, next, e.cfg.MaxQuantity)
	}

	if !exists {
		line = &Line{Price: product.Price}
		e.cart.insert(product.ID, line)
	}
	line.Quantity = next

	return e.save()
}

// Remove deletes the product's line. Removing an absent product is a no-op.
func (e *Engine) Remove(productID int64) error {
	if !e.cart.remove(productID) {
		return nil
	}
	return e.save()
}

// Items resolves every line against the catalog in one lookup. Lines whose
// product no longer exists are skipped. Each call resolves afresh.
func (e *Engine) Items(ctx context.Context) ([]LineItem, error) {
	if e.cart.Len() == 0 {
		return nil, nil
	}

	products, err := e.catalog.GetProductsByIDs(ctx, e.cart.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("get cart products: %w", err)
	}

	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]LineItem, 0, len(products))
	for _, id := range e.cart.order {
		product, ok := byID[id]
		if !ok {
			continue
		}
		line := e.cart.lines[id]
		items = append(items, LineItem{
			Product:  product,
			Price:    line.Price,
			Quantity: line.Quantity,
			Total:    models.LineTotal(line.Price, line.Quantity),
		})
	}

	return items, nil
}

// ItemCount is the total number of units, not of distinct products.
func (e *Engine) ItemCount() int {
	return e.cart.quantity()
}

// Lines exposes the raw cart for inspection.
func (e *Engine) Lines() *Cart {
	return e.cart
}

func (e *Engine) Subtotal(ctx context.Context) (decimal.Decimal, error) {
	items, err := e.Items(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return subtotal(items), nil
}

func subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total)
	}
	return total
}

func (e *Engine) CouponID() (int64, bool) {
	if e.couponID == nil {
		return 0, false
	}
	return *e.couponID, true
}

func (e *Engine) BindCoupon(id int64) {
	e.couponID = &id
	if err := e.sess.Set(e.cfg.CouponKey, id); err != nil {
		e.logger.Error("store coupon binding", zap.Error(err))
	}
}

func (e *Engine) UnbindCoupon() {
	e.couponID = nil
	e.sess.Delete(e.cfg.CouponKey)
}

// ValidateCoupon re-checks the bound coupon at now. A coupon that is missing,
// inactive or outside its window is unbound and reported as Cleared.
func (e *Engine) ValidateCoupon(ctx context.Context, now time.Time) (CouponResolution, error) {
	id, ok := e.CouponID()
	if !ok {
		return CouponResolution{}, nil
	}

	c, err := e.coupons.GetCoupon(ctx, id)
	if err != nil && !errors.Is(err, database.ErrCouponNotFound) {
		return CouponResolution{}, fmt.Errorf("get coupon %d: %w", id, err)
	}

	if err != nil || !coupon.IsValid(c, now) {
		e.UnbindCoupon()
		e.logger.Info("cleared stale coupon",
			zap.String("session_id", e.sess.ID),
			zap.Int64("coupon_id", id))
		return CouponResolution{Cleared: true}, nil
	}

	return CouponResolution{Coupon: c}, nil
}

// Coupon returns the bound coupon if it is valid now.
func (e *Engine) Coupon(ctx context.Context) (*models.Coupon, error) {
	res, err := e.ValidateCoupon(ctx, e.now())
	if err != nil {
		return nil, err
	}
	return res.Coupon, nil
}

func (e *Engine) DiscountAmount(ctx context.Context) (decimal.Decimal, error) {
	s, err := e.Summary(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return s.Discount, nil
}

func (e *Engine) Total(ctx context.Context) (decimal.Decimal, error) {
	s, err := e.Summary(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return s.Total, nil
}

// Summary prices the cart with a single catalog lookup and a single coupon
// check.
func (e *Engine) Summary(ctx context.Context) (Summary, error) {
	res, err := e.ValidateCoupon(ctx, e.now())
	if err != nil {
		return Summary{}, err
	}

	items, err := e.Items(ctx)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Items:         items,
		ItemCount:     e.ItemCount(),
		Subtotal:      subtotal(items),
		Coupon:        res.Coupon,
		CouponCleared: res.Cleared,
		Discount:      decimal.Zero,
	}
	if res.Coupon != nil {
		s.Discount = models.DiscountAmount(s.Subtotal, res.Coupon.Discount)
	}
	s.Total = s.Subtotal.Sub(s.Discount)

	return s, nil
}

// Clear empties the cart and drops the coupon binding.
func (e *Engine) Clear() {
	e.cart = newCart()
	e.couponID = nil
	e.sess.Delete(e.cfg.SessionKey)
	e.sess.Delete(e.cfg.CouponKey)
	e.sess.MarkModified()
}

func (e *Engine) save() error {
	if err := e.sess.Set(e.cfg.SessionKey, e.cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
