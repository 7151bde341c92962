package store_test

import (
	"context"

	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/models"
	"github.com/safar/go-shop/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productNames(page *store.OffsetPage) []string {
	var names []string
	for _, p := range page.Items.([]models.Product) {
		names = append(names, p.Name)
	}
	return names
}

func (s *storeSuite) TestListProducts() {
	t := s.T()
	ctx := context.Background()

	tea := s.category("tea")
	coffee := s.category("coffee")
	s.product(tea.ID, "Oolong", "7.50", true)
	s.product(tea.ID, "Assam", "4.00", true)
	s.product(tea.ID, "Darjeeling", "9.00", true)
	s.product(tea.ID, "Hidden Sencha", "3.00", false)
	s.product(coffee.ID, "Arabica", "12.00", true)

	tests := []struct {
		name      string
		filter    store.ProductFilter
		wantNames []string
		wantPages int
		wantPage  int
	}{
		{
			name:      "all available ordered by name",
			filter:    store.ProductFilter{PageSize: 3, Page: 1},
			wantNames: []string{"Arabica", "Assam", "Darjeeling"},
			wantPages: 2,
			wantPage:  1,
		},
		{
			name:      "second page",
			filter:    store.ProductFilter{PageSize: 3, Page: 2},
			wantNames: []string{"Oolong"},
			wantPages: 2,
			wantPage:  2,
		},
		{
			name:      "page past the end falls back to last",
			filter:    store.ProductFilter{PageSize: 3, Page: 40},
			wantNames: []string{"Oolong"},
			wantPages: 2,
			wantPage:  2,
		},
		{
			name:      "category",
			filter:    store.ProductFilter{CategorySlug: tea.Slug, PageSize: 10},
			wantNames: []string{"Assam", "Darjeeling", "Oolong"},
			wantPages: 1,
			wantPage:  1,
		},
		{
			name:      "query matches case-insensitively",
			filter:    store.ProductFilter{Query: "OOL", PageSize: 10},
			wantNames: []string{"Oolong"},
			wantPages: 1,
			wantPage:  1,
		},
		{
			name:      "like wildcards are literal",
			filter:    store.ProductFilter{Query: "%", PageSize: 10},
			wantPages: 0,
			wantPage:  1,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			page, err := store.ListProducts(ctx, s.db, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, productNames(page))
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantPage, page.Page)
		})
	}

	_, err := store.ListProducts(ctx, s.db, store.ProductFilter{CategorySlug: "nope"})
	assert.ErrorIs(t, err, database.ErrCategoryNotFound)
}

func (s *storeSuite) TestGetAvailableProduct() {
	t := s.T()
	ctx := context.Background()

	c := s.category("tea")
	visible := s.product(c.ID, "Oolong", "7.50", true)
	hidden := s.product(c.ID, "Sencha", "3.00", false)

	got, err := s.store.GetAvailableProduct(ctx, visible.ID, visible.Slug)
	require.NoError(t, err)
	assert.Equal(t, "tea", got.CategoryName)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("7.50")))

	_, err = s.store.GetAvailableProduct(ctx, visible.ID, "wrong-slug")
	assert.ErrorIs(t, err, database.ErrProductNotFound)

	_, err = s.store.GetAvailableProduct(ctx, hidden.ID, hidden.Slug)
	assert.ErrorIs(t, err, database.ErrProductNotFound)
}

func (s *storeSuite) TestGetProductsByIDs() {
	t := s.T()
	ctx := context.Background()

	c := s.category("tea")
	a := s.product(c.ID, "A", "1.00", true)
	b := s.product(c.ID, "B", "2.00", false)

	products, err := s.store.GetProductsByIDs(ctx, []int64{a.ID, 999999, b.ID})
	require.NoError(t, err)
	assert.Len(t, products, 2, "missing ids are skipped, unavailable ones still resolve")

	products, err = s.store.GetProductsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func (s *storeSuite) TestRelatedProducts() {
	t := s.T()
	ctx := context.Background()

	tea := s.category("tea")
	other := s.category("coffee")
	main := s.product(tea.ID, "Oolong", "7.50", true)
	s.product(tea.ID, "Assam", "4.00", true)
	s.product(tea.ID, "Sencha", "3.00", false)
	s.product(other.ID, "Arabica", "12.00", true)

	related, err := store.RelatedProducts(ctx, s.db, main, 4)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "Assam", related[0].Name)
}

func (s *storeSuite) TestCategories() {
	t := s.T()
	ctx := context.Background()

	_, err := store.CreateCategory(ctx, s.db, "Tea", "tea")
	require.NoError(t, err)
	_, err = store.CreateCategory(ctx, s.db, "Coffee", "coffee")
	require.NoError(t, err)

	_, err = store.CreateCategory(ctx, s.db, "Tea again", "tea")
	assert.ErrorIs(t, err, database.ErrCategorySlugTaken)

	categories, err := store.ListCategories(ctx, s.db)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Coffee", categories[0].Name)

	got, err := store.GetCategoryBySlug(ctx, s.db, "tea")
	require.NoError(t, err)
	assert.Equal(t, "Tea", got.Name)
}

func (s *storeSuite) TestUpdateAndDeleteProduct() {
	t := s.T()
	ctx := context.Background()

	c := s.category("tea")
	p := s.product(c.ID, "Oolong", "7.50", true)

	require.NoError(t, store.UpdateProductPrice(ctx, s.db, p.ID, decimal.RequireFromString("8.25")))
	got, err := store.GetProduct(ctx, s.db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "8.25", models.FormatMoney(got.Price))

	assert.Error(t, store.UpdateProductPrice(ctx, s.db, p.ID, decimal.RequireFromString("-1")))

	require.NoError(t, store.DeleteProduct(ctx, s.db, p.ID))
	assert.ErrorIs(t, store.DeleteProduct(ctx, s.db, p.ID), database.ErrProductNotFound)
}
