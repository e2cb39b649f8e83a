package handler

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/event"
	reviewapp "github.com/shopfront/backend/internal/application/review"
	"github.com/shopfront/backend/internal/application/storefront"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recentStub struct {
	mu     sync.Mutex
	pushed []uuid.UUID
}

func (r *recentStub) Push(_ context.Context, _, productID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushed = append(r.pushed, productID)
	return nil
}

func (r *recentStub) List(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.pushed...), nil
}

func newStorefrontRouter(s *middleware.Session, products *testutil.MockProductRepository, reviews *testutil.MockReviewRepository, recent storefront.RecentlyViewedStore) *gin.Engine {
	store := storefront.NewService(products, reviews, recent, zap.NewNop())
	h := NewStorefrontHandler(store)
	rh := NewReviewHandler(reviewapp.NewService(reviews, products, new(testutil.MockUserRepository),
		event.NewDispatcher(testutil.NewRecordingPublisher(), zap.NewNop())))
	return newTestRouter(s, func(r gin.IRouter) {
		r.GET("/products/recommended", h.Recommended)
		r.GET("/products/:id", h.GetProduct)
		r.POST("/products/:id/reviews", rh.Submit)
	})
}

func TestStorefrontHandler_GetProduct_RecordsViewer(t *testing.T) {
	products := new(testutil.MockProductRepository)
	reviews := new(testutil.MockReviewRepository)
	recent := &recentStub{}
	lamp, err := catalog.NewProduct("Lamp", decimal.NewFromInt(25), 3)
	require.NoError(t, err)
	products.On("FindByID", mock.Anything, lamp.ID).Return(lamp, nil)
	reviews.On("RatingCounts", mock.Anything, lamp.ID).Return(map[int]int{5: 2, 4: 1}, nil)

	w := testutil.Do(t, newStorefrontRouter(shopperSession(), products, reviews, recent), testutil.Request{Path: "/products/" + lamp.ID.String()})
	detail := testutil.DecodeData[storefront.ProductDetailResponse](t, w)
	assert.Equal(t, "Lamp", detail.Product.Name)
	require.Len(t, detail.BoughtTogether, 1)
	assert.Equal(t, []uuid.UUID{lamp.ID}, recent.pushed)

	// anonymous views are not recorded
	w = testutil.Do(t, newStorefrontRouter(nil, products, reviews, recent), testutil.Request{Path: "/products/" + lamp.ID.String()})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, recent.pushed, 1)
}

func TestStorefrontHandler_GetProduct_Inactive(t *testing.T) {
	products := new(testutil.MockProductRepository)
	lamp, err := catalog.NewProduct("Lamp", decimal.NewFromInt(25), 3)
	require.NoError(t, err)
	require.NoError(t, lamp.Deactivate())
	products.On("FindByID", mock.Anything, lamp.ID).Return(lamp, nil)

	w := testutil.Do(t, newStorefrontRouter(nil, products, nil, nil), testutil.Request{Path: "/products/" + lamp.ID.String()})
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestStorefrontHandler_Recommended_Empty(t *testing.T) {
	products := new(testutil.MockProductRepository)
	products.On("FindRandom", mock.Anything, mock.Anything, mock.Anything).Return([]catalog.Product{}, nil)

	w := testutil.Do(t, newStorefrontRouter(nil, products, nil, nil), testutil.Request{Path: "/products/recommended"})
	rec := testutil.DecodeData[storefront.RecommendationResponse](t, w)
	assert.Empty(t, rec.Products)
	assert.Equal(t, storefront.SourceNone, rec.Source)
	assert.Equal(t, storefront.NoRecommendationsMessage, rec.Message)
}

func TestReviewHandler_Submit_Validation(t *testing.T) {
	w := testutil.Do(t, newStorefrontRouter(shopperSession(), nil, nil, nil), testutil.Request{
		Method: http.MethodPost,
		Path:   "/products/" + uuid.NewString() + "/reviews",
		Body:   reviewapp.SubmitReviewRequest{Rating: 6, Comment: "great"},
	})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}
