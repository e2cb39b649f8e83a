package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/event"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProduct(t *testing.T, name string, price int64, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, decimal.NewFromInt(price), stock)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func newProductService() (*ProductService, *testutil.MockProductRepository, *testutil.MockCategoryRepository, *testutil.RecordingPublisher) {
	products := new(testutil.MockProductRepository)
	categories := new(testutil.MockCategoryRepository)
	pub := testutil.NewRecordingPublisher()
	return NewProductService(products, categories, event.NewDispatcher(pub, zap.NewNop())), products, categories, pub
}

func TestProductService_Create(t *testing.T) {
	svc, products, categories, pub := newProductService()
	ctx := context.Background()
	categoryID := uuid.New()
	sale := decimal.NewFromInt(75)

	categories.On("FindByID", ctx, categoryID).Return(&catalog.Category{}, nil)
	products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

	resp, err := svc.Create(ctx, CreateProductRequest{
		Name:        "Trail Runner",
		Description: "Lightweight shoe",
		CategoryID:  &categoryID,
		Price:       decimal.NewFromInt(100),
		SalePrice:   &sale,
		Stock:       5,
		Colors:      []ColorOptionDTO{{Name: "Red", Hex: "#ff0000", Image: "https://cdn.test/red.jpg"}},
		Sizes:       []string{"42", "43"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Trail Runner", resp.Name)
	assert.Equal(t, 25, resp.Discount)
	assert.True(t, resp.EffectivePrice.Equal(sale))
	assert.True(t, resp.InStock)
	assert.Equal(t, &categoryID, resp.CategoryID)
	assert.Len(t, resp.Colors, 1)
	assert.Contains(t, pub.Types(), catalog.EventTypeProductCreated)
	products.AssertExpectations(t)
}

func TestProductService_Create_UnknownCategory(t *testing.T) {
	svc, products, categories, _ := newProductService()
	ctx := context.Background()
	categoryID := uuid.New()
	categories.On("FindByID", ctx, categoryID).Return(nil, shared.ErrNotFound)

	_, err := svc.Create(ctx, CreateProductRequest{Name: "Lamp", Price: decimal.NewFromInt(10), CategoryID: &categoryID})

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_CATEGORY", de.Code)
	products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_Create_SalePriceAbovePrice(t *testing.T) {
	svc, products, _, _ := newProductService()
	sale := decimal.NewFromInt(120)

	_, err := svc.Create(context.Background(), CreateProductRequest{Name: "Lamp", Price: decimal.NewFromInt(100), SalePrice: &sale})

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_SALE_PRICE", de.Code)
	products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_List_BuildsFilter(t *testing.T) {
	svc, products, _, _ := newProductService()
	ctx := context.Background()
	categoryID := uuid.New()
	excluded := uuid.New()
	items := []catalog.Product{*newTestProduct(t, "A", 10, 1), *newTestProduct(t, "B", 20, 0)}

	matches := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 5 &&
			f.Filters[catalog.FilterCategoryID] == categoryID &&
			f.Filters[catalog.FilterStatus] == "active" &&
			assert.ObjectsAreEqual([]uuid.UUID{excluded}, f.Filters[catalog.FilterExclude]) &&
			f.Filters[catalog.FilterMinPrice].(decimal.Decimal).Equal(decimal.NewFromInt(5))
	})
	products.On("FindAll", ctx, matches).Return(items, nil)
	products.On("Count", ctx, matches).Return(int64(7), nil)

	got, total, err := svc.List(ctx, ProductListFilter{
		CategoryID: categoryID.String(),
		Status:     "active",
		Exclude:    excluded.String() + ", ",
		MinPrice:   "5",
		Page:       2,
		PageSize:   5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, got, 2)
	assert.False(t, got[1].InStock)
	products.AssertExpectations(t)
}

func TestProductService_List_InvalidExclude(t *testing.T) {
	svc, _, _, _ := newProductService()
	_, _, err := svc.List(context.Background(), ProductListFilter{Exclude: "not-a-uuid"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestProductService_Update_PartialFields(t *testing.T) {
	svc, products, _, _ := newProductService()
	ctx := context.Background()
	product := newTestProduct(t, "Lamp", 10, 1)
	product.Description = "old"
	related := uuid.New()
	name := "Desk Lamp"

	products.On("FindByID", ctx, product.ID).Return(product, nil)
	products.On("Save", ctx, product).Return(nil)

	resp, err := svc.Update(ctx, product.ID, UpdateProductRequest{
		Name:              &name,
		RelatedProductIDs: []uuid.UUID{related, product.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", resp.Name)
	assert.Equal(t, "old", resp.Description)
	assert.Equal(t, []uuid.UUID{related}, resp.RelatedProductIDs)
}

func TestProductService_UpdateStock(t *testing.T) {
	ctx := context.Background()

	t.Run("delta is applied atomically", func(t *testing.T) {
		svc, products, _, _ := newProductService()
		product := newTestProduct(t, "Lamp", 10, 8)
		delta := -3
		products.On("AdjustStock", ctx, product.ID, -3).Return(5, nil)
		products.On("FindByID", ctx, product.ID).Return(product, nil)

		_, err := svc.UpdateStock(ctx, product.ID, UpdateStockRequest{Delta: &delta})
		require.NoError(t, err)
		products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("delta below zero", func(t *testing.T) {
		svc, products, _, _ := newProductService()
		id := uuid.New()
		delta := -10
		products.On("AdjustStock", ctx, id, -10).Return(0, shared.ErrInsufficientStock)

		_, err := svc.UpdateStock(ctx, id, UpdateStockRequest{Delta: &delta})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("absolute level", func(t *testing.T) {
		svc, products, _, _ := newProductService()
		product := newTestProduct(t, "Lamp", 10, 8)
		stock := 2
		products.On("FindByID", ctx, product.ID).Return(product, nil)
		products.On("Save", ctx, product).Return(nil)

		resp, err := svc.UpdateStock(ctx, product.ID, UpdateStockRequest{Stock: &stock})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Stock)
	})

	t.Run("nothing given", func(t *testing.T) {
		svc, _, _, _ := newProductService()
		_, err := svc.UpdateStock(ctx, uuid.New(), UpdateStockRequest{})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestProductService_Deactivate(t *testing.T) {
	svc, products, _, pub := newProductService()
	ctx := context.Background()
	product := newTestProduct(t, "Lamp", 10, 1)
	products.On("FindByID", ctx, product.ID).Return(product, nil)
	products.On("Save", ctx, product).Return(nil)

	resp, err := svc.Deactivate(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)
	assert.Equal(t, []string{catalog.EventTypeProductStatusChanged}, pub.Types())

	_, err = svc.Deactivate(ctx, product.ID)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ALREADY_INACTIVE", de.Code)
}

func TestProductService_Delete_NotFound(t *testing.T) {
	svc, products, _, _ := newProductService()
	ctx := context.Background()
	id := uuid.New()
	products.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, id), shared.ErrNotFound)
	products.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestParseIDList(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	ids, err := ParseIDList(" " + a.String() + ",," + b.String())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	ids, err = ParseIDList("")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
