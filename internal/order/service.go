package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/safar/go-shop/internal/metrics"
	"github.com/safar/go-shop/internal/models"
	"github.com/safar/go-shop/internal/notify"
	"github.com/safar/go-shop/internal/receipt"
	"github.com/safar/go-shop/internal/session"
	"go.uber.org/zap"
)

// CheckoutCart is a cart that can be emptied once its order is placed.
type CheckoutCart interface {
	Cart
	Clear()
}

type ServiceConfig struct {
	// OrderKey names the session value that remembers the last placed order.
	OrderKey string
}

type Service struct {
	cfg       ServiceConfig
	builder   *Builder
	repo      Repository
	formatter receipt.Formatter
	sender    notify.Sender
	metrics   *metrics.ShopMetrics
	logger    *zap.Logger
}

func NewService(cfg ServiceConfig, repo Repository, formatter receipt.Formatter, sender notify.Sender, m *metrics.ShopMetrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:       cfg,
		builder:   NewBuilder(repo, logger),
		repo:      repo,
		formatter: formatter,
		sender:    sender,
		metrics:   m,
		logger:    logger,
	}
}

// Checkout places the order for a non-empty cart and a valid customer, empties
// the cart and remembers the order id in sess. A receipt is then sent; failing
// to send it does not fail the checkout.
func (s *Service) Checkout(ctx context.Context, sess *session.Session, c CheckoutCart, customer models.Customer) (*models.Order, error) {
	if c.ItemCount() == 0 {
		s.fail("empty_cart")
		return nil, ErrEmptyCart
	}

	customer = NormalizeCustomer(customer)
	if err := ValidateCustomer(customer); err != nil {
		s.fail("invalid_customer")
		return nil, err
	}

	created, err := s.builder.Create(ctx, customer, c)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			s.fail("empty_cart")
		} else {
			s.fail("persist")
		}
		return nil, err
	}

	c.Clear()
	if err := sess.Set(s.cfg.OrderKey, created.ID); err != nil {
		return nil, fmt.Errorf("remember order: %w", err)
	}
	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}

	s.sendReceipt(ctx, created)

	return created, nil
}

func (s *Service) sendReceipt(ctx context.Context, placed *models.Order) {
	full, err := s.repo.GetOrder(ctx, placed.ID)
	if err != nil {
		s.logger.Error("load order for receipt", zap.Int64("order_id", placed.ID), zap.Error(err))
		s.notifyFailed()
		return
	}

	rec := s.formatter.Format(full)
	err = s.sender.Send(ctx, notify.Message{
		OrderID: full.ID,
		To:      full.Email,
		Subject: rec.Subject,
		Body:    rec.Body,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("send receipt", zap.Int64("order_id", full.ID), zap.Error(err))
		s.notifyFailed()
	}
}

// Confirmation loads the order last placed in sess.
func (s *Service) Confirmation(ctx context.Context, sess *session.Session) (*models.Order, error) {
	var id int64
	ok, err := sess.Get(s.cfg.OrderKey, &id)
	if err != nil || !ok {
		return nil, ErrNoOrderInSession
	}
	return s.repo.GetOrder(ctx, id)
}

// Receipt renders the receipt for an order.
func (s *Service) Receipt(o *models.Order) receipt.Receipt {
	return s.formatter.Format(o)
}

func (s *Service) fail(reason string) {
	if s.metrics != nil {
		s.metrics.CheckoutFailures.WithLabelValues(reason).Inc()
	}
}

func (s *Service) notifyFailed() {
	if s.metrics != nil {
		s.metrics.NotificationsFailed.Inc()
	}
}
