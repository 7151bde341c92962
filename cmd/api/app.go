package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/safar/go-shop/internal/cart"
	"github.com/safar/go-shop/internal/config"
	"github.com/safar/go-shop/internal/metrics"
	"github.com/safar/go-shop/internal/notify"
	"github.com/safar/go-shop/internal/order"
	"github.com/safar/go-shop/internal/receipt"
	"github.com/safar/go-shop/internal/session"
	"github.com/safar/go-shop/internal/store"
	"go.uber.org/zap"
)

const relatedProductsLimit = 4

type app struct {
	cfg      *config.Config
	cartCfg  cart.Config
	store    *store.Store
	sessions session.Store
	orders   *order.Service
	server   *metrics.ServerMetrics
	shop     *metrics.ShopMetrics
	logger   *zap.Logger
}

func cartConfig(cfg *config.Config) cart.Config {
	return cart.Config{
		SessionKey:  cfg.Shop.CartSessionKey,
		CouponKey:   config.CouponSessionKey,
		MaxQuantity: cfg.Shop.CartMaxQuantity,
	}
}

func newApp(cfg *config.Config, st *store.Store, sessions session.Store, sender notify.Sender, reg prometheus.Registerer, logger *zap.Logger) *app {
	shop := metrics.NewShopMetrics(reg)
	formatter := receipt.NewFormatter(cfg.Shop.Name, cfg.Shop.CurrencySymbol)
	orders := order.NewService(order.ServiceConfig{OrderKey: config.OrderSessionKey},
		st, formatter, sender, shop, logger)

	return &app{
		cfg:      cfg,
		cartCfg:  cartConfig(cfg),
		store:    st,
		sessions: sessions,
		orders:   orders,
		server:   metrics.NewServerMetrics(reg),
		shop:     shop,
		logger:   logger,
	}
}

func (a *app) routes(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern, name string, h http.HandlerFunc) {
		mux.Handle(pattern, a.server.Instrument(name, h))
	}
	withSession := func(pattern, name string, h http.HandlerFunc) {
		mux.Handle(pattern, a.server.Instrument(name, a.withSession(h)))
	}

	handle("GET /health", "health", a.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler(gatherer))

	handle("GET /categories", "categories", a.handleCategories)
	handle("GET /products", "products", a.handleProducts)
	handle("GET /products/{id}/{slug}", "product_detail", a.handleProductDetail)

	withSession("GET /cart", "cart_detail", a.handleCartDetail)
	withSession("POST /cart/items/{id}", "cart_add", a.handleCartAdd)
	withSession("DELETE /cart/items/{id}", "cart_remove", a.handleCartRemove)
	withSession("POST /coupons/apply", "coupon_apply", a.handleCouponApply)
	withSession("POST /orders", "order_create", a.handleOrderCreate)
	withSession("GET /orders/created", "order_created", a.handleOrderCreated)

	return mux
}

func (a *app) newCart(sess *session.Session) *cart.Engine {
	return cart.New(a.cartCfg, sess, a.store, a.store,
		cart.WithLogger(a.logger))
}
