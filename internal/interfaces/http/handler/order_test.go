package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/event"
	tradeapp "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newOrderRouter(orders *testutil.MockOrderRepository) *gin.Engine {
	svc := tradeapp.NewOrderService(orders, new(testutil.MockProductRepository), new(testutil.MockPromotionRepository),
		&testutil.PassthroughTx{}, nil, event.NewDispatcher(testutil.NewRecordingPublisher(), zap.NewNop()), zap.NewNop())
	h := NewOrderHandler(nil, svc)
	return newTestRouter(shopperSession(), func(r gin.IRouter) {
		r.POST("/checkout", h.Checkout)
		r.GET("/orders", h.ListMine)
		r.GET("/orders/:id", h.GetMine)
		r.POST("/orders/:id/cancel", h.CancelMine)
		r.PUT("/admin/orders/:id/status", h.UpdateStatus)
	})
}

func TestOrderHandler_ListMine(t *testing.T) {
	orders := new(testutil.MockOrderRepository)
	mine := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 5
	})
	orders.On("FindAll", mock.Anything, mine).Return([]trade.Order{}, nil)
	orders.On("Count", mock.Anything, mine).Return(int64(7), nil)

	w := testutil.Do(t, newOrderRouter(orders), testutil.Request{Path: "/orders?page=2&page_size=5"})
	env := testutil.DecodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.EqualValues(t, 7, env.Meta["total"])
	assert.EqualValues(t, 2, env.Meta["total_pages"])
	orders.AssertExpectations(t)
}

func TestOrderHandler_ListMine_BadStatus(t *testing.T) {
	w := testutil.Do(t, newOrderRouter(new(testutil.MockOrderRepository)), testutil.Request{Path: "/orders?status=lost"})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestOrderHandler_GetMine_NotFound(t *testing.T) {
	orders := new(testutil.MockOrderRepository)
	id := uuid.New()
	orders.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	w := testutil.Do(t, newOrderRouter(orders), testutil.Request{Path: "/orders/" + id.String()})
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestOrderHandler_CancelMine_ReasonRequired(t *testing.T) {
	w := testutil.Do(t, newOrderRouter(new(testutil.MockOrderRepository)), testutil.Request{
		Method: http.MethodPost,
		Path:   "/orders/" + uuid.NewString() + "/cancel",
		Body:   map[string]string{},
	})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestOrderHandler_Checkout_Validation(t *testing.T) {
	w := testutil.Do(t, newOrderRouter(new(testutil.MockOrderRepository)), testutil.Request{
		Method: http.MethodPost,
		Path:   "/checkout",
		Body:   map[string]any{"payment_method": "barter"},
	})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestOrderHandler_UpdateStatus_UnknownStatus(t *testing.T) {
	w := testutil.Do(t, newOrderRouter(new(testutil.MockOrderRepository)), testutil.Request{
		Method: http.MethodPut,
		Path:   "/admin/orders/" + uuid.NewString() + "/status",
		Body:   tradeapp.UpdateOrderStatusRequest{Status: "lost"},
	})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}
