package review

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/event"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc      *Service
	reviews  *testutil.MockReviewRepository
	products *testutil.MockProductRepository
	users    *testutil.MockUserRepository
	pub      *testutil.RecordingPublisher
}

func newFixture() fixture {
	f := fixture{
		reviews:  new(testutil.MockReviewRepository),
		products: new(testutil.MockProductRepository),
		users:    new(testutil.MockUserRepository),
		pub:      testutil.NewRecordingPublisher(),
	}
	f.svc = NewService(f.reviews, f.products, f.users, event.NewDispatcher(f.pub, zap.NewNop()))
	return f
}

func activeProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Desk Lamp", decimal.NewFromInt(40), 3)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func pendingReview(t *testing.T) *review.Review {
	t.Helper()
	rv, err := review.NewReview(uuid.New(), uuid.New(), "Ana", 4, "Bright and sturdy lamp")
	require.NoError(t, err)
	rv.ClearDomainEvents()
	return rv
}

func TestService_Submit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	product := activeProduct(t)
	authorID := testutil.TestUserID()

	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.users.On("FindByID", mock.Anything, authorID).Return(&identity.User{DisplayName: "Ana"}, nil)
	f.reviews.On("Save", mock.Anything, mock.AnythingOfType("*review.Review")).Return(nil)

	resp, err := f.svc.Submit(ctx, product.ID, authorID, SubmitReviewRequest{Rating: 5, Comment: "  Exactly as described  "})
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "Ana", resp.AuthorName)
	assert.Equal(t, "Exactly as described", resp.Comment)
	assert.Equal(t, []string{review.EventTypeReviewSubmitted}, f.pub.Types())
}

func TestService_Submit_UnknownProduct(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.products.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := f.svc.Submit(context.Background(), id, uuid.New(), SubmitReviewRequest{Rating: 5, Comment: "Exactly as described"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.reviews.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Submit_InactiveProduct(t *testing.T) {
	f := newFixture()
	product := activeProduct(t)
	require.NoError(t, product.Deactivate())
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	_, err := f.svc.Submit(context.Background(), product.ID, uuid.New(), SubmitReviewRequest{Rating: 5, Comment: "Exactly as described"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_Submit_ShortComment(t *testing.T) {
	f := newFixture()
	product := activeProduct(t)
	authorID := uuid.New()
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.users.On("FindByID", mock.Anything, authorID).Return(&identity.User{DisplayName: "Ana"}, nil)

	_, err := f.svc.Submit(context.Background(), product.ID, authorID, SubmitReviewRequest{Rating: 3, Comment: "   too short   "})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_COMMENT", de.Code)
	assert.Empty(t, f.pub.Types())
}

func TestService_ListForProduct(t *testing.T) {
	f := newFixture()
	product := activeProduct(t)
	approved := pendingReview(t)
	require.NoError(t, approved.Approve())

	onlyApproved := mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Filters[filterStatus] == review.StatusApproved && filter.Filters[filterProductID] == product.ID
	})
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.reviews.On("FindAll", mock.Anything, onlyApproved).Return([]review.Review{*approved}, nil)
	f.reviews.On("Count", mock.Anything, onlyApproved).Return(int64(1), nil)
	f.reviews.On("RatingCounts", mock.Anything, product.ID).Return(map[int]int{4: 1}, nil)

	resp, total, err := f.svc.ListForProduct(context.Background(), product.ID, PublicListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, resp.Reviews, 1)
	assert.Equal(t, 1, resp.Summary.Count)
	assert.Equal(t, 4.0, resp.Summary.Average)
}

func TestService_List_RejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	_, _, err := f.svc.List(context.Background(), ReviewListFilter{Status: "spam"})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_STATUS", de.Code)
}

func TestService_Moderation(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		f := newFixture()
		rv := pendingReview(t)
		f.reviews.On("FindByID", mock.Anything, rv.ID).Return(rv, nil)
		f.reviews.On("Save", mock.Anything, rv).Return(nil)

		resp, err := f.svc.Approve(context.Background(), rv.ID)
		require.NoError(t, err)
		assert.Equal(t, "approved", resp.Status)
		assert.Equal(t, []string{review.EventTypeReviewModerated}, f.pub.Types())
	})

	t.Run("reject with note", func(t *testing.T) {
		f := newFixture()
		rv := pendingReview(t)
		f.reviews.On("FindByID", mock.Anything, rv.ID).Return(rv, nil)
		f.reviews.On("Save", mock.Anything, rv).Return(nil)

		resp, err := f.svc.Reject(context.Background(), rv.ID, RejectReviewRequest{Note: " off-topic "})
		require.NoError(t, err)
		assert.Equal(t, "rejected", resp.Status)
		assert.Equal(t, "off-topic", resp.ModerationNote)
	})

	t.Run("approve twice", func(t *testing.T) {
		f := newFixture()
		rv := pendingReview(t)
		require.NoError(t, rv.Approve())
		f.reviews.On("FindByID", mock.Anything, rv.ID).Return(rv, nil)

		_, err := f.svc.Approve(context.Background(), rv.ID)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "ALREADY_APPROVED", de.Code)
		f.reviews.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestService_Delete(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.reviews.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	err := f.svc.Delete(context.Background(), id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.reviews.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
