package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/safar/go-shop/internal/cart"
	"github.com/safar/go-shop/internal/coupon"
	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/models"
	"github.com/safar/go-shop/internal/order"
	"github.com/safar/go-shop/internal/store"
	"go.uber.org/zap"
)

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DB().PingContext(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *app) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), a.store.DB())
	if err != nil {
		a.internalError(w, "list categories", err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (a *app) handleProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))

	result, err := store.ListProducts(r.Context(), a.store.DB(), store.ProductFilter{
		CategorySlug: query.Get("category"),
		Query:        query.Get("query"),
		Page:         page,
		PageSize:     a.cfg.Shop.CatalogPageSize,
	})
	if err != nil {
		if errors.Is(err, database.ErrCategoryNotFound) {
			respondError(w, http.StatusNotFound, "Category not found")
			return
		}
		a.internalError(w, "list products", err)
		return
	}

	if products, ok := result.Items.([]models.Product); ok {
		result.Items = newProductViews(products)
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *app) handleProductDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := a.store.GetAvailableProduct(ctx, id, r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		a.internalError(w, "get product", err)
		return
	}

	related, err := store.RelatedProducts(ctx, a.store.DB(), product, relatedProductsLimit)
	if err != nil {
		a.internalError(w, "related products", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"product": newProductView(*product),
		"related": newProductViews(related),
	})
}

func (a *app) handleCartDetail(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	a.respondCart(w, r, a.newCart(sess), http.StatusOK)
}

func (a *app) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	req := struct {
		Quantity int  `json:"quantity"`
		Override bool `json:"override"`
	}{Quantity: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := a.store.GetProduct(ctx, id)
	if err != nil || !product.Available {
		if err == nil || errors.Is(err, database.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		a.internalError(w, "get product", err)
		return
	}

	engine := a.newCart(sess)
	if err := engine.Add(product, req.Quantity, req.Override); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) || errors.Is(err, cart.ErrQuantityLimit) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.internalError(w, "add to cart", err)
		return
	}

	a.respondCart(w, r, engine, http.StatusOK)
}

func (a *app) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	engine := a.newCart(sess)
	if err := engine.Remove(id); err != nil {
		a.internalError(w, "remove from cart", err)
		return
	}

	a.respondCart(w, r, engine, http.StatusOK)
}

func (a *app) handleCouponApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	engine := a.newCart(sess)
	result, err := coupon.Apply(ctx, a.store, engine, req.Code, time.Now())
	if err != nil {
		a.internalError(w, "apply coupon", err)
		return
	}
	a.shop.CouponApplies.WithLabelValues(result.Status).Inc()

	if err := a.saveSession(ctx, sess); err != nil {
		a.internalError(w, "save session", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *app) handleOrderCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)

	var customer models.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	engine := a.newCart(sess)
	created, err := a.orders.Checkout(ctx, sess, engine, customer)
	if err != nil {
		var invalid *order.ValidationError
		switch {
		case errors.As(err, &invalid):
			respondJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "Invalid customer details",
				"fields": invalid.Fields,
			})
		case errors.Is(err, order.ErrEmptyCart):
			// A stale coupon may have been dropped on the way.
			if err := a.saveSession(ctx, sess); err != nil {
				a.logger.Error("save session", zap.Error(err))
			}
			respondError(w, http.StatusConflict, "Your cart is empty")
		default:
			a.internalError(w, "checkout", err)
		}
		return
	}

	// The order is committed. Failing to store the emptied cart must not
	// invite a retry, so the stale session is dropped instead.
	if err := a.saveSession(ctx, sess); err != nil {
		a.logger.Error("save session after checkout",
			zap.String("session_id", sess.ID),
			zap.Int64("order_id", created.ID),
			zap.Error(err))
		if err := a.sessions.Delete(ctx, sess.ID); err != nil {
			a.logger.Error("drop stale session", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}
	respondJSON(w, http.StatusCreated, newOrderView(created))
}

func (a *app) handleOrderCreated(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)

	placed, err := a.orders.Confirmation(ctx, sess)
	if err != nil {
		if !errors.Is(err, order.ErrNoOrderInSession) && !errors.Is(err, database.ErrOrderNotFound) {
			a.logger.Error("load confirmation", zap.String("session_id", sess.ID), zap.Error(err))
		}
		respondJSON(w, http.StatusOK, confirmationView{Notice: "We could not find your order."})
		return
	}

	view := newOrderView(placed)
	rec := a.orders.Receipt(placed)
	respondJSON(w, http.StatusOK, confirmationView{Order: &view, Receipt: &rec})
}

// respondCart writes the cart summary after persisting any session change,
// including a stale coupon dropped while pricing.
func (a *app) respondCart(w http.ResponseWriter, r *http.Request, engine *cart.Engine, status int) {
	ctx := r.Context()

	summary, err := engine.Summary(ctx)
	if err != nil {
		a.internalError(w, "cart summary", err)
		return
	}
	if summary.CouponCleared {
		a.shop.StaleCouponsCleared.Inc()
	}

	if err := a.saveSession(ctx, sessionFrom(ctx)); err != nil {
		a.internalError(w, "save session", err)
		return
	}
	respondJSON(w, status, newCartView(summary))
}

func (a *app) internalError(w http.ResponseWriter, op string, err error) {
	a.logger.Error(op, zap.Error(err))
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("encode JSON response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
