package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = `p.id, p.category_id, c.name, p.name, p.slug, p.description, p.price, p.available, p.created_at, p.updated_at`

const productFrom = `FROM products p JOIN categories c ON c.id = p.category_id`

type ProductFilter struct {
	CategorySlug string
	Query        string
	Page         int
	PageSize     int
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner, product *models.Product) error {
	return s.Scan(
		&product.ID,
		&product.CategoryID,
		&product.CategoryName,
		&product.Name,
		&product.Slug,
		&product.Description,
		&product.Price,
		&product.Available,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

type CreateProductRequest struct {
	CategoryID  int64
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	Available   bool
}

func CreateProduct(ctx context.Context, q database.Querier, req CreateProductRequest) (*models.Product, error) {
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("create product: negative price %s", req.Price)
	}

	var id int64
	err := q.QueryRowContext(ctx,
		`INSERT INTO products (category_id, name, slug, description, price, available, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING id`,
		req.CategoryID, req.Name, req.Slug, req.Description, req.Price, req.Available).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return GetProduct(ctx, q, id)
}

func GetProduct(ctx context.Context, q database.Querier, id int64) (*models.Product, error) {
	product := &models.Product{}

	query := `SELECT ` + productColumns + ` ` + productFrom + ` WHERE p.id = $1`

	if err := scanProduct(q.QueryRowContext(ctx, query, id), product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// GetAvailableProduct finds a product by id and slug, hiding unavailable ones.
func GetAvailableProduct(ctx context.Context, q database.Querier, id int64, slug string) (*models.Product, error) {
	product := &models.Product{}

	query := `SELECT ` + productColumns + ` ` + productFrom + `
		WHERE p.id = $1 AND p.slug = $2 AND p.available`

	if err := scanProduct(q.QueryRowContext(ctx, query, id, slug), product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get available product: %w", err)
	}

	return product, nil
}

// GetProductsByIDs loads the given products in one query. Missing ids are
// skipped, not reported.
func GetProductsByIDs(ctx context.Context, q database.Querier, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + productColumns + ` ` + productFrom + ` WHERE p.id = ANY($1)`

	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}

	return scanProducts(rows)
}

// ListProducts pages through available products ordered by name, optionally
// restricted to a category and to a case-insensitive match on name or
// description.
func ListProducts(ctx context.Context, q database.Querier, filter ProductFilter) (*OffsetPage, error) {
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	where := []string{"p.available"}
	var args []any

	if filter.CategorySlug != "" {
		category, err := GetCategoryBySlug(ctx, q, filter.CategorySlug)
		if err != nil {
			return nil, err
		}
		args = append(args, category.ID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}

	if query := strings.TrimSpace(filter.Query); query != "" {
		args = append(args, "%"+escapeLike(query)+"%")
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}

	whereSQL := " WHERE " + strings.Join(where, " AND ")

	var total int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) `+productFrom+whereSQL, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	pages := totalPages(total, pageSize)
	page := clampPage(filter.Page, pages)
	offset := (page - 1) * pageSize

	args = append(args, pageSize, offset)
	query := `SELECT ` + productColumns + ` ` + productFrom + whereSQL +
		fmt.Sprintf(` ORDER BY p.name, p.id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	return &OffsetPage{
		Items:      products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}, nil
}

// RelatedProducts picks up to limit other available products of the same
// category in random order.
func RelatedProducts(ctx context.Context, q database.Querier, product *models.Product, limit int) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` ` + productFrom + `
		WHERE p.category_id = $1 AND p.available AND p.id <> $2
		ORDER BY RANDOM()
		LIMIT $3`

	rows, err := q.QueryContext(ctx, query, product.CategoryID, product.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("related products: %w", err)
	}

	return scanProducts(rows)
}

func UpdateProductPrice(ctx context.Context, q database.Querier, id int64, price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("update price: negative price %s", price)
	}

	result, err := q.ExecContext(ctx,
		`UPDATE products SET price = $1, updated_at = NOW() WHERE id = $2`,
		price, id)
	if err != nil {
		return fmt.Errorf("update price: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func DeleteProduct(ctx context.Context, q database.Querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
