// Package coupon decides whether a coupon can be used and binds valid coupons
// to a cart.
package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/models"
)

// IsValid reports whether c is active and now falls inside its validity
// window, bounds included. Callers must re-check on every use.
func IsValid(c *models.Coupon, now time.Time) bool {
	if c == nil || !c.Active {
		return false
	}
	return !now.Before(c.ValidFrom) && !now.After(c.ValidTo)
}

type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeInvalid
	OutcomeNotFound
	OutcomeMissingCode
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeMissingCode:
		return "missing_code"
	default:
		return "unknown"
	}
}

// Finder looks coupons up by code, ignoring case.
type Finder interface {
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// Binder is the part of a cart that holds the applied coupon.
type Binder interface {
	BindCoupon(id int64)
	UnbindCoupon()
}

type Result struct {
	Outcome Outcome        `json:"-"`
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Coupon  *models.Coupon `json:"coupon,omitempty"`
}

func newResult(outcome Outcome, message string, c *models.Coupon) Result {
	return Result{Outcome: outcome, Status: outcome.String(), Message: message, Coupon: c}
}

// Apply looks code up and binds the coupon to cart when it is valid at now.
// An unknown or invalid code clears the binding; a blank code leaves it as is.
func Apply(ctx context.Context, finder Finder, cart Binder, code string, now time.Time) (Result, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return newResult(OutcomeMissingCode, "Enter a coupon code", nil), nil
	}

	c, err := finder.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, database.ErrCouponNotFound) {
			cart.UnbindCoupon()
			return newResult(OutcomeNotFound, "No coupon matches that code", nil), nil
		}
		return Result{}, fmt.Errorf("get coupon by code: %w", err)
	}

	if !IsValid(c, now) {
		cart.UnbindCoupon()
		return newResult(OutcomeInvalid, "This coupon is not valid", nil), nil
	}

	cart.BindCoupon(c.ID)
	return newResult(OutcomeApplied, fmt.Sprintf("Coupon %s applied", c.Code), c), nil
}
