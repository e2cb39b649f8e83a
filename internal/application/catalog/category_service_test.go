package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create_NormalizesName(t *testing.T) {
	categories := new(testutil.MockCategoryRepository)
	svc := NewCategoryService(categories, new(testutil.MockProductRepository))
	ctx := context.Background()

	categories.On("FindBySlug", ctx, "running-shoes").Return(nil, shared.ErrNotFound)
	categories.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)

	resp, err := svc.Create(ctx, CreateCategoryRequest{Name: "  running   shoes ", SortOrder: 3})
	require.NoError(t, err)
	assert.Equal(t, "Running Shoes", resp.Name)
	assert.Equal(t, "running-shoes", resp.Slug)
	assert.Equal(t, 3, resp.SortOrder)
}

func TestCategoryService_Create_Duplicate(t *testing.T) {
	categories := new(testutil.MockCategoryRepository)
	svc := NewCategoryService(categories, new(testutil.MockProductRepository))
	ctx := context.Background()
	existing, err := catalog.NewCategory("Shoes")
	require.NoError(t, err)

	categories.On("FindBySlug", ctx, "shoes").Return(existing, nil)

	_, err = svc.Create(ctx, CreateCategoryRequest{Name: "shoes"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	categories.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCategoryService_Update_KeepsOwnSlug(t *testing.T) {
	categories := new(testutil.MockCategoryRepository)
	svc := NewCategoryService(categories, new(testutil.MockProductRepository))
	ctx := context.Background()
	category, err := catalog.NewCategory("Shoes")
	require.NoError(t, err)

	categories.On("FindByID", ctx, category.ID).Return(category, nil)
	categories.On("FindBySlug", ctx, "shoes").Return(category, nil)
	categories.On("Save", ctx, category).Return(nil)

	order := 9
	resp, err := svc.Update(ctx, category.ID, UpdateCategoryRequest{Name: "shoes", Description: "All shoes", SortOrder: &order})
	require.NoError(t, err)
	assert.Equal(t, "All shoes", resp.Description)
	assert.Equal(t, 9, resp.SortOrder)
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("in use", func(t *testing.T) {
		categories := new(testutil.MockCategoryRepository)
		products := new(testutil.MockProductRepository)
		svc := NewCategoryService(categories, products)
		id := uuid.New()
		categories.On("FindByID", ctx, id).Return(&catalog.Category{}, nil)
		products.On("CountByCategory", ctx, id).Return(int64(2), nil)

		err := svc.Delete(ctx, id)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "CATEGORY_IN_USE", de.Code)
		categories.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("empty", func(t *testing.T) {
		categories := new(testutil.MockCategoryRepository)
		products := new(testutil.MockProductRepository)
		svc := NewCategoryService(categories, products)
		id := uuid.New()
		categories.On("FindByID", ctx, id).Return(&catalog.Category{}, nil)
		products.On("CountByCategory", ctx, id).Return(int64(0), nil)
		categories.On("Delete", ctx, id).Return(nil)

		require.NoError(t, svc.Delete(ctx, id))
		categories.AssertExpectations(t)
	})
}
