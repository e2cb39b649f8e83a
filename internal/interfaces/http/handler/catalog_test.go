package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	"github.com/shopfront/backend/internal/application/event"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCategoryRouter(categories *testutil.MockCategoryRepository, products *testutil.MockProductRepository) *gin.Engine {
	h := NewCategoryHandler(catalogapp.NewCategoryService(categories, products))
	return newTestRouter(nil, func(r gin.IRouter) {
		r.GET("/categories", h.List)
		r.GET("/categories/:id", h.Get)
		r.POST("/admin/categories", h.Create)
		r.DELETE("/admin/categories/:id", h.Delete)
	})
}

func TestCategoryHandler_List(t *testing.T) {
	categories := new(testutil.MockCategoryRepository)
	lamps, err := catalog.NewCategory("Lamps")
	require.NoError(t, err)
	categories.On("FindAll", mock.Anything).Return([]catalog.Category{*lamps}, nil)

	w := testutil.Do(t, newCategoryRouter(categories, new(testutil.MockProductRepository)), testutil.Request{Path: "/categories"})
	got := testutil.DecodeData[[]catalogapp.CategoryResponse](t, w)
	require.Len(t, got, 1)
	assert.Equal(t, "Lamps", got[0].Name)
	assert.Equal(t, "lamps", got[0].Slug)
}

func TestCategoryHandler_Get_NotFound(t *testing.T) {
	categories := new(testutil.MockCategoryRepository)
	id := uuid.New()
	categories.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	w := testutil.Do(t, newCategoryRouter(categories, nil), testutil.Request{Path: "/categories/" + id.String()})
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestCategoryHandler_Create_Validation(t *testing.T) {
	w := testutil.Do(t, newCategoryRouter(new(testutil.MockCategoryRepository), nil), testutil.Request{
		Method: http.MethodPost,
		Path:   "/admin/categories",
		Body:   map[string]string{"description": "no name"},
	})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestCategoryHandler_Delete(t *testing.T) {
	categories := new(testutil.MockCategoryRepository)
	products := new(testutil.MockProductRepository)
	used, err := catalog.NewCategory("Lamps")
	require.NoError(t, err)
	empty, err := catalog.NewCategory("Rugs")
	require.NoError(t, err)

	categories.On("FindByID", mock.Anything, used.ID).Return(used, nil)
	categories.On("FindByID", mock.Anything, empty.ID).Return(empty, nil)
	products.On("CountByCategory", mock.Anything, used.ID).Return(int64(4), nil)
	products.On("CountByCategory", mock.Anything, empty.ID).Return(int64(0), nil)
	categories.On("Delete", mock.Anything, empty.ID).Return(nil)
	r := newCategoryRouter(categories, products)

	w := testutil.Do(t, r, testutil.Request{Method: http.MethodDelete, Path: "/admin/categories/" + used.ID.String()})
	testutil.AssertErrorResponse(t, w, http.StatusConflict, "CATEGORY_IN_USE")

	w = testutil.Do(t, r, testutil.Request{Method: http.MethodDelete, Path: "/admin/categories/" + empty.ID.String()})
	assert.Equal(t, http.StatusNoContent, w.Code)
	categories.AssertExpectations(t)
}

func newProductRouter(products *testutil.MockProductRepository) *gin.Engine {
	svc := catalogapp.NewProductService(products, new(testutil.MockCategoryRepository),
		event.NewDispatcher(testutil.NewRecordingPublisher(), zap.NewNop()))
	h := NewProductHandler(svc, nil)
	return newTestRouter(nil, func(r gin.IRouter) {
		r.GET("/admin/products/:id", h.Get)
		r.PUT("/admin/products/:id/stock", h.UpdateStock)
		r.POST("/admin/products/:id/images/upload-url", h.InitiateImageUpload)
		r.DELETE("/admin/products/:id/images", h.DeleteImage)
	})
}

func TestProductHandler_Get(t *testing.T) {
	products := new(testutil.MockProductRepository)
	lamp, err := catalog.NewProduct("Lamp", decimal.NewFromInt(25), 3)
	require.NoError(t, err)
	products.On("FindByID", mock.Anything, lamp.ID).Return(lamp, nil)
	r := newProductRouter(products)

	w := testutil.Do(t, r, testutil.Request{Path: "/admin/products/" + lamp.ID.String()})
	got := testutil.DecodeData[catalogapp.ProductResponse](t, w)
	assert.Equal(t, "Lamp", got.Name)

	w = testutil.Do(t, r, testutil.Request{Path: "/admin/products/lamp"})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
}

func TestProductHandler_UpdateStock_NotFound(t *testing.T) {
	products := new(testutil.MockProductRepository)
	id := uuid.New()
	products.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	stock := 5
	w := testutil.Do(t, newProductRouter(products), testutil.Request{
		Method: http.MethodPut,
		Path:   "/admin/products/" + id.String() + "/stock",
		Body:   catalogapp.UpdateStockRequest{Stock: &stock},
	})
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestProductHandler_ImagesWithoutStorage(t *testing.T) {
	r := newProductRouter(new(testutil.MockProductRepository))
	id := uuid.NewString()

	w := testutil.Do(t, r, testutil.Request{
		Method: http.MethodPost,
		Path:   "/admin/products/" + id + "/images/upload-url",
		Body:   map[string]any{"file_name": "a.jpg", "content_type": "image/jpeg", "file_size": 10},
	})
	testutil.AssertErrorResponse(t, w, http.StatusServiceUnavailable, dto.ErrCodeUnavailable)

	w = testutil.Do(t, r, testutil.Request{Method: http.MethodDelete, Path: "/admin/products/" + id + "/images?key=x"})
	testutil.AssertErrorResponse(t, w, http.StatusServiceUnavailable, dto.ErrCodeUnavailable)
}
