package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// CustomerStatsHandler maintains the order count and lifetime spend of the
// customer profile when an order is placed
type CustomerStatsHandler struct {
	customerRepo partner.CustomerRepository
	logger       *zap.Logger
}

// NewCustomerStatsHandler creates a new CustomerStatsHandler
func NewCustomerStatsHandler(customerRepo partner.CustomerRepository, logger *zap.Logger) *CustomerStatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerStatsHandler{customerRepo: customerRepo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CustomerStatsHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderPlaced}
}

// Handle adds the order total to the customer profile
func (h *CustomerStatsHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	placed, ok := ev.(*trade.OrderPlacedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", trade.EventTypeOrderPlaced, ev.EventType())
	}

	customer, err := h.customerRepo.FindByUserID(ctx, placed.CustomerID)
	if errors.Is(err, shared.ErrNotFound) {
		h.logger.Warn("No customer profile for placed order",
			zap.String("order_number", placed.OrderNumber),
			zap.String("customer_id", placed.CustomerID.String()))
		return nil
	}
	if err != nil {
		return err
	}

	customer.RecordOrder(placed.Total)
	if err := h.customerRepo.Save(ctx, customer); err != nil {
		return fmt.Errorf("failed to update customer stats: %w", err)
	}
	h.logger.Debug("Customer stats updated",
		zap.String("customer_id", customer.ID.String()),
		zap.Int("order_count", customer.OrderCount))
	return nil
}

var _ shared.EventHandler = (*CustomerStatsHandler)(nil)
