package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/models"
)

func CreateCategory(ctx context.Context, q database.Querier, name, slug string) (*models.Category, error) {
	category := &models.Category{}

	err := q.QueryRowContext(ctx,
		`INSERT INTO categories (name, slug) VALUES ($1, $2)
		 RETURNING id, name, slug`,
		name, slug).Scan(&category.ID, &category.Name, &category.Slug)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrCategorySlugTaken
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

func GetCategoryBySlug(ctx context.Context, q database.Querier, slug string) (*models.Category, error) {
	category := &models.Category{}

	err := q.QueryRowContext(ctx,
		`SELECT id, name, slug FROM categories WHERE slug = $1`,
		slug).Scan(&category.ID, &category.Name, &category.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return category, nil
}

func ListCategories(ctx context.Context, q database.Querier) ([]models.Category, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return categories, nil
}
