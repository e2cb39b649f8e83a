package trade

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeOrder = "Order"

const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderCancelled     = "OrderCancelled"
	EventTypeOrderPaid          = "OrderPaid"
)

// EventItem is the part of an order line downstream consumers need
type EventItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func eventItems(o *Order) []EventItem {
	items := make([]EventItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = EventItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return items
}

// OrderPlacedEvent is raised when checkout succeeds
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerEmail string          `json:"customer_email"`
	Total         decimal.Decimal `json:"total"`
	Items         []EventItem     `json:"items"`
}

func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CustomerEmail:   o.CustomerEmail,
		Total:           o.Total,
		Items:           eventItems(o),
	}
}

// OrderStatusChangedEvent is raised on each forward fulfilment step
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID   `json:"order_id"`
	OrderNumber    string      `json:"order_number"`
	OldStatus      OrderStatus `json:"old_status"`
	NewStatus      OrderStatus `json:"new_status"`
	TrackingNumber string      `json:"tracking_number,omitempty"`
}

func NewOrderStatusChangedEvent(o *Order, old OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		OldStatus:       old,
		NewStatus:       o.Status,
		TrackingNumber:  o.TrackingNumber,
	}
}

// OrderCancelledEvent carries what must be restocked and released
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	OldStatus   OrderStatus `json:"old_status"`
	Reason      string      `json:"reason"`
	PromotionID *uuid.UUID  `json:"promotion_id,omitempty"`
	Items       []EventItem `json:"items"`
}

func NewOrderCancelledEvent(o *Order, old OrderStatus) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		OldStatus:       old,
		Reason:          o.CancelReason,
		PromotionID:     o.PromotionID,
		Items:           eventItems(o),
	}
}

// OrderPaidEvent is raised when payment is confirmed
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID          uuid.UUID       `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	Total            decimal.Decimal `json:"total"`
	PaymentReference string          `json:"payment_reference"`
}

func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID),
		OrderID:          o.ID,
		OrderNumber:      o.OrderNumber,
		Total:            o.Total,
		PaymentReference: o.PaymentReference,
	}
}
