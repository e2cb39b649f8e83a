package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/cart"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/promotion"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *testutil.MockPromotionRepository, *testutil.MockCartRepository) {
	promos := new(testutil.MockPromotionRepository)
	carts := new(testutil.MockCartRepository)
	svc := NewService(promos, carts)
	svc.now = func() time.Time { return fixedNow }
	return svc, promos, carts
}

func percentRule(value int64) RuleDTO {
	return RuleDTO{Name: "Autumn", Type: "percentage", Value: decimal.NewFromInt(value), Active: true}
}

func TestService_Create(t *testing.T) {
	svc, promos, _ := newTestService()
	promos.On("ExistsByCode", mock.Anything, "AUTUMN10").Return(false, nil)
	promos.On("Save", mock.Anything, mock.AnythingOfType("*promotion.Promotion")).Return(nil)

	resp, err := svc.Create(context.Background(), CreatePromotionRequest{Code: " autumn10 ", RuleDTO: percentRule(10)})
	require.NoError(t, err)
	assert.Equal(t, "AUTUMN10", resp.Code)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, "all", resp.Applicability)
}

func TestService_Create_Rejected(t *testing.T) {
	svc, promos, _ := newTestService()
	promos.On("ExistsByCode", mock.Anything, "TAKEN").Return(true, nil)

	_, err := svc.Create(context.Background(), CreatePromotionRequest{Code: "TAKEN", RuleDTO: percentRule(10)})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = svc.Create(context.Background(), CreatePromotionRequest{Code: "HUGE", RuleDTO: percentRule(150)})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_VALUE", de.Code)
	promos.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_List_StatusFilter(t *testing.T) {
	svc, promos, _ := newTestService()
	starts := fixedNow.Add(48 * time.Hour)
	rule := percentRule(5).toDomain()
	rule.StartsAt = &starts
	scheduled, err := promotion.New("LATER", rule)
	require.NoError(t, err)

	byStatus := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters[filterStatus] == promotion.StatusScheduled
	})
	promos.On("FindAll", mock.Anything, byStatus).Return([]promotion.Promotion{*scheduled}, nil)
	promos.On("Count", mock.Anything, byStatus).Return(int64(1), nil)

	list, total, err := svc.List(context.Background(), PromotionListFilter{Status: "scheduled"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "scheduled", list[0].Status)
}

func TestService_SetActiveAndDelete(t *testing.T) {
	svc, promos, _ := newTestService()
	used, err := promotion.New("USED", percentRule(10).toDomain())
	require.NoError(t, err)
	require.NoError(t, used.RecordUsage())
	fresh, err := promotion.New("FRESH", percentRule(10).toDomain())
	require.NoError(t, err)

	promos.On("FindByID", mock.Anything, used.ID).Return(used, nil)
	promos.On("FindByID", mock.Anything, fresh.ID).Return(fresh, nil)
	promos.On("Save", mock.Anything, used).Return(nil)
	promos.On("Delete", mock.Anything, fresh.ID).Return(nil)

	resp, err := svc.SetActive(context.Background(), used.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)

	err = svc.Delete(context.Background(), used.ID)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "PROMOTION_IN_USE", de.Code)

	require.NoError(t, svc.Delete(context.Background(), fresh.ID))
	promos.AssertExpectations(t)
}

func TestService_Preview(t *testing.T) {
	svc, promos, carts := newTestService()
	userID := uuid.New()
	lamp, err := catalog.NewProduct("Lamp", decimal.NewFromInt(40), 10)
	require.NoError(t, err)
	c := cart.New(userID)
	_, err = c.AddItem(lamp, 2, "", "")
	require.NoError(t, err)
	promo, err := promotion.New("AUTUMN10", percentRule(10).toDomain())
	require.NoError(t, err)

	carts.On("Get", mock.Anything, userID).Return(c, nil)
	promos.On("FindByCode", mock.Anything, "AUTUMN10").Return(promo, nil)
	promos.On("FindByCode", mock.Anything, "NOPE").Return(nil, shared.ErrNotFound)
	promos.On("CountRedemptions", mock.Anything, promo.ID, userID).Return(0, nil)

	resp, err := svc.Preview(context.Background(), userID, PreviewRequest{Code: "autumn10"})
	require.NoError(t, err)
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(80)))
	assert.True(t, resp.Discount.Equal(decimal.NewFromInt(8)))
	assert.False(t, resp.ShippingWaived)

	_, err = svc.Preview(context.Background(), userID, PreviewRequest{Code: "nope"})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "PROMOTION_NOT_FOUND", de.Code)
}

func TestService_Preview_LimitReached(t *testing.T) {
	svc, promos, carts := newTestService()
	userID := uuid.New()
	lamp, err := catalog.NewProduct("Lamp", decimal.NewFromInt(40), 10)
	require.NoError(t, err)
	c := cart.New(userID)
	_, err = c.AddItem(lamp, 1, "", "")
	require.NoError(t, err)
	rule := percentRule(10).toDomain()
	rule.PerCustomerLimit = 1
	promo, err := promotion.New("ONCE", rule)
	require.NoError(t, err)

	carts.On("Get", mock.Anything, userID).Return(c, nil)
	promos.On("FindByCode", mock.Anything, "ONCE").Return(promo, nil)
	promos.On("CountRedemptions", mock.Anything, promo.ID, userID).Return(1, nil)

	_, err = svc.Preview(context.Background(), userID, PreviewRequest{Code: "once"})
	assert.ErrorIs(t, err, promotion.ErrCustomerLimit)
}
