package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/models"
)

// CreateOrder inserts the order row only. Items are written separately and
// both must share a transaction.
func CreateOrder(ctx context.Context, q database.Querier, order models.Order) (*models.Order, error) {
	if order.Discount < 0 || order.Discount > 100 {
		return nil, fmt.Errorf("create order: discount %d outside 0-100", order.Discount)
	}

	created := order
	created.Items = nil

	var couponID sql.NullInt64
	if order.CouponID != nil {
		couponID = sql.NullInt64{Int64: *order.CouponID, Valid: true}
	}

	err := q.QueryRowContext(ctx,
		`INSERT INTO orders (first_name, last_name, email, address, postal_code, city,
		                     created_at, updated_at, paid, coupon_id, discount)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW(), $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		order.FirstName, order.LastName, order.Email, order.Address, order.PostalCode, order.City,
		order.Paid, couponID, order.Discount).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return &created, nil
}

func CreateOrderItem(ctx context.Context, q database.Querier, orderID int64, item models.OrderItem) (*models.OrderItem, error) {
	if item.Quantity < 1 {
		return nil, fmt.Errorf("create order item: quantity %d", item.Quantity)
	}

	created := item
	created.OrderID = orderID

	err := q.QueryRowContext(ctx,
		`INSERT INTO order_items (order_id, product_id, price, quantity)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		orderID, item.ProductID, item.Price, item.Quantity).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("create order item: %w", err)
	}

	return &created, nil
}

// GetOrder loads an order with its items (product names joined) and its
// coupon when the coupon row still exists.
func GetOrder(ctx context.Context, q database.Querier, id int64) (*models.Order, error) {
	order := &models.Order{}

	var (
		couponID        sql.NullInt64
		couponCode      sql.NullString
		couponValidFrom sql.NullTime
		couponValidTo   sql.NullTime
		couponDiscount  sql.NullInt64
		couponActive    sql.NullBool
	)

	query := `
		SELECT o.id, o.first_name, o.last_name, o.email, o.address, o.postal_code, o.city,
		       o.created_at, o.updated_at, o.paid, o.coupon_id, o.discount,
		       c.code, c.valid_from, c.valid_to, c.discount, c.active
		FROM orders o
		LEFT JOIN coupons c ON c.id = o.coupon_id
		WHERE o.id = $1`

	err := q.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.FirstName,
		&order.LastName,
		&order.Email,
		&order.Address,
		&order.PostalCode,
		&order.City,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Paid,
		&couponID,
		&order.Discount,
		&couponCode,
		&couponValidFrom,
		&couponValidTo,
		&couponDiscount,
		&couponActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if couponID.Valid {
		cid := couponID.Int64
		order.CouponID = &cid
		order.Coupon = &models.Coupon{
			ID:        cid,
			Code:      couponCode.String,
			ValidFrom: couponValidFrom.Time,
			ValidTo:   couponValidTo.Time,
			Discount:  int(couponDiscount.Int64),
			Active:    couponActive.Bool,
		}
	}

	itemsQuery := `
		SELECT i.id, i.order_id, i.product_id, p.name, i.price, i.quantity
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = $1
		ORDER BY i.id`

	rows, err := q.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Price,
			&item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	order.Items = items

	return order, nil
}

// MarkOrderPaid flips the only mutable order field.
func MarkOrderPaid(ctx context.Context, q database.Querier, id int64) error {
	result, err := q.ExecContext(ctx,
		`UPDATE orders SET paid = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrOrderNotFound
	}

	return nil
}

func CountOrders(ctx context.Context, q database.Querier) (int64, error) {
	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return total, nil
}
