package event

import (
	"context"
	"errors"
	"testing"

	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func newProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Lamp", decimal.NewFromInt(10), 1)
	require.NoError(t, err)
	return p
}

func TestDispatcher_PublishesAndClears(t *testing.T) {
	pub := new(MockPublisher)
	p := newProduct(t)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == catalog.EventTypeProductCreated
	})).Return(nil).Once()

	NewDispatcher(pub, zap.NewNop()).Dispatch(context.Background(), p)

	pub.AssertExpectations(t)
	assert.Empty(t, p.GetDomainEvents())
}

func TestDispatcher_FailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus stopped"))
	p := newProduct(t)

	NewDispatcher(pub, zap.New(core)).Dispatch(context.Background(), p)

	assert.Empty(t, p.GetDomainEvents())
	require.Equal(t, 1, logs.FilterMessage("Failed to publish domain events").Len())
}

func TestDispatcher_NilPublisher(t *testing.T) {
	p := newProduct(t)
	NewDispatcher(nil, nil).Dispatch(context.Background(), p)
	assert.Empty(t, p.GetDomainEvents())

	var d *Dispatcher
	assert.NotPanics(t, func() { d.Dispatch(context.Background(), p) })
}
