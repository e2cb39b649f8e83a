package trade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCustomerStatsHandler(t *testing.T) {
	customers := new(testutil.MockCustomerRepository)
	h := NewCustomerStatsHandler(customers, zap.NewNop())
	userID := uuid.New()
	order := testOrder(t, userID, trade.PaymentMethodCashOnDelivery, testProduct(t, "Lamp", 25, 3))
	profile, err := partner.NewCustomer("Ana", "ana@example.com")
	require.NoError(t, err)

	customers.On("FindByUserID", mock.Anything, userID).Return(profile, nil)
	customers.On("Save", mock.Anything, profile).Return(nil)

	require.NoError(t, h.Handle(context.Background(), trade.NewOrderPlacedEvent(order)))
	assert.Equal(t, 1, profile.OrderCount)
	assert.True(t, profile.TotalSpent.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, []string{trade.EventTypeOrderPlaced}, h.EventTypes())
}

func TestCustomerStatsHandler_NoProfile(t *testing.T) {
	customers := new(testutil.MockCustomerRepository)
	core, logs := observer.New(zap.WarnLevel)
	h := NewCustomerStatsHandler(customers, zap.New(core))
	order := testOrder(t, uuid.New(), trade.PaymentMethodCashOnDelivery, testProduct(t, "Lamp", 25, 3))
	customers.On("FindByUserID", mock.Anything, order.CustomerID).Return(nil, shared.ErrNotFound)

	require.NoError(t, h.Handle(context.Background(), trade.NewOrderPlacedEvent(order)))
	assert.Equal(t, 1, logs.Len())
	customers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCustomerStatsHandler_WrongEvent(t *testing.T) {
	h := NewCustomerStatsHandler(new(testutil.MockCustomerRepository), nil)
	order := testOrder(t, uuid.New(), trade.PaymentMethodCashOnDelivery, testProduct(t, "Lamp", 25, 3))
	assert.Error(t, h.Handle(context.Background(), trade.NewOrderPaidEvent(order)))
}
