package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	marketingapp "github.com/shopfront/backend/internal/application/marketing"
	"github.com/shopfront/backend/internal/domain/marketing"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newMarketingRouter(subscribers *testutil.MockSubscriberRepository) *gin.Engine {
	svc := marketingapp.NewService(subscribers,
		marketingapp.StoreProfile{Name: "Harbour Goods", Email: "hello@harbour.example"},
		marketingapp.ShippingInfo{FlatFee: decimal.NewFromInt(5), FreeShippingOver: decimal.NewFromInt(100)},
		nil)
	h := NewMarketingHandler(svc)
	return newTestRouter(nil, func(r gin.IRouter) {
		r.POST("/newsletter/subscribe", h.Subscribe)
		r.POST("/newsletter/unsubscribe", h.Unsubscribe)
		r.GET("/about", h.About)
	})
}

func TestMarketingHandler_Subscribe(t *testing.T) {
	subscribers := new(testutil.MockSubscriberRepository)
	subscribers.On("FindByEmail", mock.Anything, "ana@example.com").Return(nil, shared.ErrNotFound)
	subscribers.On("Save", mock.Anything, mock.AnythingOfType("*marketing.Subscriber")).Return(nil)

	w := testutil.Do(t, newMarketingRouter(subscribers), testutil.Request{
		Method: http.MethodPost,
		Path:   "/newsletter/subscribe",
		Body:   marketingapp.SubscribeRequest{Email: "ana@example.com", Source: "footer"},
	})
	got := testutil.DecodeData[marketingapp.SubscriptionResponse](t, w)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, string(marketing.SubscriberStatusSubscribed), got.Status)
	assert.True(t, got.Changed)
}

func TestMarketingHandler_Unsubscribe_NeedsEmailOrToken(t *testing.T) {
	w := testutil.Do(t, newMarketingRouter(new(testutil.MockSubscriberRepository)), testutil.Request{
		Method: http.MethodPost,
		Path:   "/newsletter/unsubscribe",
		Body:   map[string]string{},
	})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
}

func TestMarketingHandler_About(t *testing.T) {
	subscribers := new(testutil.MockSubscriberRepository)
	subscribers.On("CountByStatus", mock.Anything, marketing.SubscriberStatusSubscribed).Return(int64(12), nil)

	w := testutil.Do(t, newMarketingRouter(subscribers), testutil.Request{Path: "/about"})
	got := testutil.DecodeData[marketingapp.AboutResponse](t, w)
	assert.Equal(t, "Harbour Goods", got.Store.Name)
	assert.EqualValues(t, 12, got.Subscribers)
	assert.True(t, got.Shipping.FlatFee.Equal(decimal.NewFromInt(5)))
}
