package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
)

func newTestProduct(t *testing.T, name string, price float64, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, decimal.NewFromFloat(price), stock)
	require.NoError(t, err)
	return p
}

func TestGormProductRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	p := newTestProduct(t, "Linen Shirt", 49.90, 5)
	p.Sizes = []string{"S", "M"}
	p.Specifications = []catalog.Specification{{Key: "Material", Value: "Linen"}}
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Linen Shirt", found.Name)
	assert.True(t, decimal.NewFromFloat(49.90).Equal(found.Price))
	assert.Equal(t, []string{"S", "M"}, found.Sizes)
	assert.Equal(t, "Linen", found.Specifications[0].Value)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_FindAllFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	categoryID := uuid.New()
	shirt := newTestProduct(t, "Linen Shirt", 50, 5)
	shirt.CategoryID = &categoryID
	sale := decimal.NewFromInt(30)
	require.NoError(t, shirt.SetPricing(decimal.NewFromInt(50), &sale))
	hat := newTestProduct(t, "Straw Hat", 20, 0)
	hat.CategoryID = &categoryID
	mug := newTestProduct(t, "Mug 100%", 12, 3)
	for _, p := range []*catalog.Product{shirt, hat, mug} {
		require.NoError(t, repo.Save(ctx, p))
	}

	tests := []struct {
		name    string
		filter  shared.Filter
		want    []uuid.UUID
		wantCnt int64
	}{
		{"by category", shared.Filter{Filters: map[string]any{catalog.FilterCategoryID: categoryID}}, []uuid.UUID{shirt.ID, hat.ID}, 2},
		{"on sale", shared.Filter{Filters: map[string]any{catalog.FilterOnSale: true}}, []uuid.UUID{shirt.ID}, 1},
		{"in stock", shared.Filter{Filters: map[string]any{catalog.FilterInStock: true}}, []uuid.UUID{shirt.ID, mug.ID}, 2},
		{"effective price range", shared.Filter{Filters: map[string]any{catalog.FilterMinPrice: 15, catalog.FilterMaxPrice: 35}}, []uuid.UUID{shirt.ID, hat.ID}, 2},
		{"exclude", shared.Filter{Filters: map[string]any{catalog.FilterExclude: []uuid.UUID{shirt.ID, hat.ID}}}, []uuid.UUID{mug.ID}, 1},
		{"search is case-insensitive", shared.Filter{Search: "LINEN"}, []uuid.UUID{shirt.ID}, 1},
		{"search escapes wildcards", shared.Filter{Search: "100%"}, []uuid.UUID{mug.ID}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.FindAll(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]uuid.UUID, len(products))
			for i, p := range products {
				ids[i] = p.ID
			}
			assert.ElementsMatch(t, tt.want, ids)

			count, err := repo.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCnt, count)
		})
	}
}

func TestGormProductRepository_FindAllPaginates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Alpha", "Bravo", "Charlie"} {
		require.NoError(t, repo.Save(ctx, newTestProduct(t, name, 10, 1)))
	}

	page, err := repo.FindAll(ctx, shared.Filter{Page: 2, PageSize: 2, OrderBy: "name", OrderDir: "asc"})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Charlie", page[0].Name)

	// unknown sort columns fall back instead of reaching SQL
	_, err = repo.FindAll(ctx, shared.Filter{OrderBy: "name; DROP TABLE products"})
	assert.NoError(t, err)
}

func TestGormProductRepository_FindRandom(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	a := newTestProduct(t, "Alpha", 10, 1)
	b := newTestProduct(t, "Bravo", 10, 1)
	c := newTestProduct(t, "Charlie", 10, 1)
	c.Status = catalog.ProductStatusInactive
	for _, p := range []*catalog.Product{a, b, c} {
		require.NoError(t, repo.Save(ctx, p))
	}

	products, err := repo.FindRandom(ctx, 5, []uuid.UUID{a.ID})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, b.ID, products[0].ID)

	products, err = repo.FindRandom(ctx, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGormProductRepository_AdjustStock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	p := newTestProduct(t, "Linen Shirt", 50, 3)
	require.NoError(t, repo.Save(ctx, p))

	stock, err := repo.AdjustStock(ctx, p.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, 1, stock)

	stock, err = repo.AdjustStock(ctx, p.ID, -2)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 1, stock)

	stock, err = repo.AdjustStock(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, stock)

	_, err = repo.AdjustStock(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_AdjustStockNeverOversells(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	p := newTestProduct(t, "Last Few", 10, 5)
	require.NoError(t, repo.Save(ctx, p))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AdjustStock(ctx, p.ID, -1); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, success)
	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.Stock)
}

func TestGormProductRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	p := newTestProduct(t, "Linen Shirt", 50, 3)
	require.NoError(t, repo.Save(ctx, p))
	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), shared.ErrNotFound)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	tm := NewTxManager(db)
	ctx := context.Background()

	p := newTestProduct(t, "Linen Shirt", 50, 3)
	require.NoError(t, repo.Save(ctx, p))

	err := tm.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.AdjustStock(ctx, p.ID, -1); err != nil {
			return err
		}
		return tm.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := repo.AdjustStock(ctx, p.ID, -5)
			return err
		})
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.Stock)
}

func TestTxManager_CommitHooks(t *testing.T) {
	db := setupTestDB(t)
	tm := NewTxManager(db)
	ctx := context.Background()

	var ran []string
	err := tm.WithinTransaction(ctx, func(ctx context.Context) error {
		shared.AfterCommit(ctx, func() { ran = append(ran, "outer") })
		return tm.WithinTransaction(ctx, func(ctx context.Context) error {
			shared.AfterCommit(ctx, func() { ran = append(ran, "nested") })
			assert.Empty(t, ran, "hooks wait for commit")
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "nested"}, ran)

	ran = nil
	err = tm.WithinTransaction(ctx, func(ctx context.Context) error {
		shared.AfterCommit(ctx, func() { ran = append(ran, "rolled back") })
		return shared.ErrInsufficientStock
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Empty(t, ran)

	shared.AfterCommit(ctx, func() { ran = append(ran, "immediate") })
	assert.Equal(t, []string{"immediate"}, ran)
}
