package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/models"
)

const couponColumns = `id, code, valid_from, valid_to, discount, active`

func scanCoupon(s scanner, coupon *models.Coupon) error {
	return s.Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.ValidFrom,
		&coupon.ValidTo,
		&coupon.Discount,
		&coupon.Active,
	)
}

type CreateCouponRequest struct {
	Code      string
	ValidFrom time.Time
	ValidTo   time.Time
	Discount  int
	Active    bool
}

func CreateCoupon(ctx context.Context, q database.Querier, req CreateCouponRequest) (*models.Coupon, error) {
	if req.Discount < 0 || req.Discount > 100 {
		return nil, fmt.Errorf("create coupon: discount %d outside 0-100", req.Discount)
	}

	coupon := &models.Coupon{}

	row := q.QueryRowContext(ctx,
		`INSERT INTO coupons (code, valid_from, valid_to, discount, active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+couponColumns,
		req.Code, req.ValidFrom, req.ValidTo, req.Discount, req.Active)
	if err := scanCoupon(row, coupon); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrCouponCodeTaken
		}
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	return coupon, nil
}

func GetCoupon(ctx context.Context, q database.Querier, id int64) (*models.Coupon, error) {
	coupon := &models.Coupon{}

	row := q.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id)
	if err := scanCoupon(row, coupon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}

	return coupon, nil
}

// GetCouponByCode matches code case-insensitively.
func GetCouponByCode(ctx context.Context, q database.Querier, code string) (*models.Coupon, error) {
	coupon := &models.Coupon{}

	row := q.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE LOWER(code) = LOWER($1)`, code)
	if err := scanCoupon(row, coupon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon by code: %w", err)
	}

	return coupon, nil
}

func DeleteCoupon(ctx context.Context, q database.Querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrCouponNotFound
	}

	return nil
}
