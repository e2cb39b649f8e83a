package storefront

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockRecentlyViewed struct {
	mock.Mock
}

func (m *MockRecentlyViewed) Push(ctx context.Context, userID, productID uuid.UUID) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *MockRecentlyViewed) List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func product(t *testing.T, name string, price int64, sale *int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, decimal.NewFromInt(price), 5)
	require.NoError(t, err)
	if sale != nil {
		s := decimal.NewFromInt(*sale)
		require.NoError(t, p.SetPricing(p.Price, &s))
	}
	p.ClearDomainEvents()
	return p
}

func ptr[T any](v T) *T { return &v }

type fixture struct {
	svc      *Service
	products *testutil.MockProductRepository
	reviews  *testutil.MockReviewRepository
	recent   *MockRecentlyViewed
}

func newFixture(logger *zap.Logger) fixture {
	f := fixture{
		products: new(testutil.MockProductRepository),
		reviews:  new(testutil.MockReviewRepository),
		recent:   new(MockRecentlyViewed),
	}
	f.svc = NewService(f.products, f.reviews, f.recent, logger)
	return f
}

func TestGetProductDetail(t *testing.T) {
	f := newFixture(zap.NewNop())
	ctx := mock.Anything
	main := product(t, "Jacket", 100, ptr[int64](75))
	main.Image = "main.jpg"
	main.Thumbnails = []string{"side.jpg", "main.jpg"}
	require.NoError(t, main.SetVariants([]catalog.ColorOption{{Name: "Red", Image: "red.jpg"}}, nil))
	scarf := product(t, "Scarf", 20, nil)
	hidden := product(t, "Hidden", 10, nil)
	require.NoError(t, hidden.Deactivate())
	main.SetRelated([]uuid.UUID{scarf.ID, hidden.ID})
	viewer := uuid.New()

	f.products.On("FindByID", ctx, main.ID).Return(main, nil)
	f.products.On("FindByIDs", ctx, []uuid.UUID{scarf.ID, hidden.ID}).Return([]catalog.Product{*hidden, *scarf}, nil)
	f.reviews.On("RatingCounts", ctx, main.ID).Return(map[int]int{5: 3, 4: 1}, nil)
	f.recent.On("Push", ctx, viewer, main.ID).Return(nil)

	detail, err := f.svc.GetProductDetail(context.Background(), main.ID, &viewer)
	require.NoError(t, err)

	assert.Equal(t, 25, detail.Product.Discount)
	assert.True(t, detail.Product.EffectivePrice.Equal(decimal.NewFromInt(75)))
	require.Len(t, detail.BoughtTogether, 2)
	assert.Equal(t, main.ID, detail.BoughtTogether[0].ID)
	assert.Equal(t, scarf.ID, detail.BoughtTogether[1].ID)
	assert.Equal(t, "75.00", detail.BoughtTogetherTotal)
	assert.Equal(t, "Red", detail.SelectedColor)
	assert.Equal(t, "red.jpg", detail.SelectedImage)
	assert.Equal(t, []string{"main.jpg", "side.jpg"}, detail.Gallery)
	assert.Equal(t, 4, detail.Reviews.Count)
	assert.InDelta(t, 4.8, detail.Reviews.Average, 0.001)
	f.recent.AssertExpectations(t)
}

func TestGetProductDetail_Anonymous(t *testing.T) {
	f := newFixture(zap.NewNop())
	p := product(t, "Lamp", 10, nil)
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.reviews.On("RatingCounts", mock.Anything, p.ID).Return(map[int]int{}, nil)

	detail, err := f.svc.GetProductDetail(context.Background(), p.ID, nil)
	require.NoError(t, err)
	assert.Len(t, detail.BoughtTogether, 1)
	assert.Equal(t, 0, detail.Product.Discount)
	f.recent.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetProductDetail_InactiveIsNotFound(t *testing.T) {
	f := newFixture(zap.NewNop())
	p := product(t, "Lamp", 10, nil)
	require.NoError(t, p.Deactivate())
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err := f.svc.GetProductDetail(context.Background(), p.ID, nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetProductDetail_RecentFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	f := newFixture(zap.New(core))
	p := product(t, "Lamp", 10, nil)
	viewer := uuid.New()
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.reviews.On("RatingCounts", mock.Anything, p.ID).Return(map[int]int{}, nil)
	f.recent.On("Push", mock.Anything, viewer, p.ID).Return(errors.New("redis down"))

	_, err := f.svc.GetProductDetail(context.Background(), p.ID, &viewer)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Failed to record recently viewed product").Len())
}

func TestListProducts_ForcesActive(t *testing.T) {
	f := newFixture(zap.NewNop())
	categoryID := uuid.New()
	active := mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Filters[catalog.FilterStatus] == "active" && filter.Filters[catalog.FilterCategoryID] == categoryID
	})
	f.products.On("FindAll", mock.Anything, active).Return([]catalog.Product{}, nil)
	f.products.On("Count", mock.Anything, active).Return(int64(0), nil)

	items, total, err := f.svc.ListProducts(context.Background(), catalogapp.ProductListFilter{
		Status:     "inactive",
		CategoryID: categoryID.String(),
	})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	f.products.AssertExpectations(t)
}

func TestRandomProducts_Limit(t *testing.T) {
	f := newFixture(zap.NewNop())
	excluded := uuid.New()
	f.products.On("FindRandom", mock.Anything, 20, []uuid.UUID{excluded}).Return([]catalog.Product{}, nil).Once()
	f.products.On("FindRandom", mock.Anything, 4, []uuid.UUID{}).Return([]catalog.Product{}, nil).Once()

	_, err := f.svc.RandomProducts(context.Background(), RandomQuery{Limit: 50, Exclude: excluded.String()})
	require.NoError(t, err)
	_, err = f.svc.RandomProducts(context.Background(), RandomQuery{})
	require.NoError(t, err)
	f.products.AssertExpectations(t)
}

func TestRecommended(t *testing.T) {
	t.Run("related first", func(t *testing.T) {
		f := newFixture(zap.NewNop())
		main := product(t, "Jacket", 100, nil)
		scarf := product(t, "Scarf", 20, nil)
		main.SetRelated([]uuid.UUID{scarf.ID})
		f.products.On("FindByID", mock.Anything, main.ID).Return(main, nil)
		f.products.On("FindByIDs", mock.Anything, []uuid.UUID{scarf.ID}).Return([]catalog.Product{*scarf}, nil)

		resp, err := f.svc.Recommended(context.Background(), RecommendedQuery{RelatedTo: main.ID.String()})
		require.NoError(t, err)
		assert.Equal(t, SourceRelated, resp.Source)
		require.Len(t, resp.Products, 1)
		assert.Equal(t, scarf.ID, resp.Products[0].ID)
		f.products.AssertNotCalled(t, "FindRandom", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("random fallback excludes current product", func(t *testing.T) {
		f := newFixture(zap.NewNop())
		main := product(t, "Jacket", 100, nil)
		other := product(t, "Boots", 60, nil)
		f.products.On("FindByID", mock.Anything, main.ID).Return(main, nil)
		f.products.On("FindRandom", mock.Anything, 4, []uuid.UUID{main.ID}).Return([]catalog.Product{*other}, nil)

		resp, err := f.svc.Recommended(context.Background(), RecommendedQuery{RelatedTo: main.ID.String()})
		require.NoError(t, err)
		assert.Equal(t, SourceRandom, resp.Source)
		assert.Len(t, resp.Products, 1)
	})

	t.Run("empty state", func(t *testing.T) {
		f := newFixture(zap.NewNop())
		f.products.On("FindRandom", mock.Anything, 4, []uuid.UUID(nil)).Return(nil, errors.New("db down"))

		resp, err := f.svc.Recommended(context.Background(), RecommendedQuery{})
		require.NoError(t, err)
		assert.Equal(t, SourceNone, resp.Source)
		assert.Equal(t, NoRecommendationsMessage, resp.Message)
		assert.NotNil(t, resp.Products)
	})
}

func TestRecentlyViewed_KeepsOrderAndSkipsInactive(t *testing.T) {
	f := newFixture(zap.NewNop())
	user := uuid.New()
	a := product(t, "A", 1, nil)
	b := product(t, "B", 2, nil)
	c := product(t, "C", 3, nil)
	require.NoError(t, c.Deactivate())
	gone := uuid.New()
	ids := []uuid.UUID{b.ID, gone, c.ID, a.ID}

	f.recent.On("List", mock.Anything, user).Return(ids, nil)
	f.products.On("FindByIDs", mock.Anything, ids).Return([]catalog.Product{*a, *b, *c}, nil)

	items, err := f.svc.RecentlyViewed(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, a.ID, items[1].ID)
}
