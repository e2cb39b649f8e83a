package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress() shared.Address {
	return shared.Address{FullName: "Ada Lovelace", Line1: "12 St James Sq", City: "London", PostalCode: "SW1Y 4JH", Country: "GB"}
}

func newTestOrder(t *testing.T, method PaymentMethod) *Order {
	t.Helper()
	o, err := NewOrder("SO-20260101-000001", uuid.New(), "", "ada@example.com", testAddress(), method)
	require.NoError(t, err)
	require.NoError(t, o.AddItem(uuid.New(), "Linen Shirt", "shirt.jpg", "Red", "M", decimal.NewFromInt(40), 2))
	require.NoError(t, o.AddItem(uuid.New(), "Socks", "", "", "", decimal.NewFromInt(5), 4))
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("defaults customer name to the recipient", func(t *testing.T) {
		o, err := NewOrder("SO-1", uuid.New(), " ", "ada@example.com", testAddress(), PaymentMethodCard)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", o.CustomerName)
		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
	})

	t.Run("validates inputs", func(t *testing.T) {
		_, err := NewOrder("", uuid.New(), "Ada", "ada@example.com", testAddress(), PaymentMethodCard)
		assert.Error(t, err)
		_, err = NewOrder("SO-1", uuid.Nil, "Ada", "ada@example.com", testAddress(), PaymentMethodCard)
		assert.Error(t, err)
		_, err = NewOrder("SO-1", uuid.New(), "Ada", "ada@example.com", shared.Address{}, PaymentMethodCard)
		assert.Error(t, err)
		_, err = NewOrder("SO-1", uuid.New(), "Ada", "ada@example.com", testAddress(), "barter")
		assert.Error(t, err)
	})
}

func TestOrder_Totals(t *testing.T) {
	o := newTestOrder(t, PaymentMethodCard)
	assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(100)))

	require.NoError(t, o.SetShippingFee(decimal.NewFromInt(7)))
	require.NoError(t, o.ApplyPromotion(uuid.New(), "TEN", decimal.NewFromInt(10), false))
	assert.True(t, o.Total.Equal(decimal.NewFromInt(97)), o.Total.String())

	require.NoError(t, o.ApplyPromotion(uuid.New(), "SHIPFREE", decimal.Zero, true))
	assert.True(t, o.Total.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 6, o.ItemCount())

	require.NoError(t, o.Place())
	events := o.GetDomainEvents()
	require.Len(t, events, 1)
	placed := events[0].(*OrderPlacedEvent)
	assert.Len(t, placed.Items, 2)
}

func TestOrder_Lifecycle(t *testing.T) {
	t.Run("moves forward through every stage", func(t *testing.T) {
		o := newTestOrder(t, PaymentMethodCashOnDelivery)
		require.NoError(t, o.StartProcessing())
		require.NoError(t, o.Ship("DHL", "JD0123"))
		require.NoError(t, o.Deliver())

		assert.Equal(t, OrderStatusDelivered, o.Status)
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
		assert.NotNil(t, o.ShippedAt)
		assert.NotNil(t, o.DeliveredAt)
		assert.True(t, o.Status.IsTerminal())
	})

	t.Run("never regresses", func(t *testing.T) {
		o := newTestOrder(t, PaymentMethodCard)
		require.NoError(t, o.StartProcessing())
		require.NoError(t, o.Ship("DHL", "JD0123"))
		require.NoError(t, o.Deliver())

		assert.Error(t, o.StartProcessing())
		assert.Error(t, o.Ship("DHL", "X"))
		assert.Error(t, o.Cancel("changed my mind"))
		assert.Equal(t, OrderStatusDelivered, o.Status)
	})

	t.Run("cannot skip stages", func(t *testing.T) {
		o := newTestOrder(t, PaymentMethodCard)
		assert.Error(t, o.Ship("DHL", "JD0123"))
		assert.Error(t, o.Deliver())
	})

	t.Run("ship requires tracking details", func(t *testing.T) {
		o := newTestOrder(t, PaymentMethodCard)
		require.NoError(t, o.StartProcessing())
		assert.Error(t, o.Ship("", "JD0123"))
		assert.Equal(t, OrderStatusProcessing, o.Status)
	})

	t.Run("cancel refunds a paid order", func(t *testing.T) {
		o := newTestOrder(t, PaymentMethodCard)
		promoID := uuid.New()
		require.NoError(t, o.ApplyPromotion(promoID, "TEN", decimal.NewFromInt(10), false))
		require.NoError(t, o.MarkPaid("pi_123"))
		o.ClearDomainEvents()

		assert.Error(t, o.Cancel(" "))
		require.NoError(t, o.Cancel("out of stock"))
		assert.Equal(t, PaymentStatusRefunded, o.PaymentStatus)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		ev := events[0].(*OrderCancelledEvent)
		assert.Equal(t, &promoID, ev.PromotionID)
		assert.Len(t, ev.Items, 2)
	})
}

func TestOrder_Payment(t *testing.T) {
	o := newTestOrder(t, PaymentMethodCard)
	o.MarkPaymentFailed()
	assert.Equal(t, PaymentStatusFailed, o.PaymentStatus)

	require.NoError(t, o.MarkPaid("pi_1"))
	assert.Equal(t, "pi_1", o.PaymentReference)
	require.NoError(t, o.MarkPaid("pi_1"), "repeat confirmation is a no-op")

	o.MarkPaymentFailed()
	assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
}

func TestNewOrderNumber(t *testing.T) {
	at := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "SO-20260309-000042", NewOrderNumber(at, 42))
}
