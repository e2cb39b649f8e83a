package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo allows only forward moves along
// pending -> processing -> shipped -> delivered, plus cancellation before shipping.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// PaymentMethod is how the shopper pays
type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
)

// IsValid reports whether m is a supported payment method
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCard || m == PaymentMethodCashOnDelivery || m == PaymentMethodBankTransfer
}

// PaymentStatus tracks money movement independently of fulfilment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// OrderItem is a priced snapshot of a cart line at checkout time
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(200);not null" json:"product_name"`
	Image       string          `gorm:"type:varchar(500)" json:"image"`
	Color       string          `gorm:"type:varchar(50)" json:"color"`
	Size        string          `gorm:"type:varchar(50)" json:"size"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Order is a placed purchase and its fulfilment lifecycle
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber      string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName     string          `gorm:"type:varchar(100);not null"`
	CustomerEmail    string          `gorm:"type:varchar(255);not null"`
	ShippingAddress  shared.Address  `gorm:"type:jsonb"`
	Items            []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ShippingFee      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PromotionCode    string          `gorm:"type:varchar(32)"`
	PromotionID      *uuid.UUID      `gorm:"type:uuid"`
	PaymentMethod    PaymentMethod   `gorm:"type:varchar(30);not null"`
	PaymentStatus    PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentReference string          `gorm:"type:varchar(100);index"`
	Status           OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index"`
	Carrier          string          `gorm:"type:varchar(50)"`
	TrackingNumber   string          `gorm:"type:varchar(100)"`
	Note             string          `gorm:"type:text"`
	ProcessedAt      *time.Time
	ShippedAt        *time.Time
	DeliveredAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending order with no items
func NewOrder(orderNumber string, customerID uuid.UUID, customerName, customerEmail string, address shared.Address, method PaymentMethod) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer cannot be empty")
	}
	if strings.TrimSpace(customerEmail) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer email cannot be empty")
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unsupported payment method: "+string(method))
	}
	if customerName = strings.TrimSpace(customerName); customerName == "" {
		customerName = address.FullName
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		CustomerEmail:     strings.TrimSpace(customerEmail),
		ShippingAddress:   address,
		Items:             make([]OrderItem, 0),
		Subtotal:          decimal.Zero,
		DiscountAmount:    decimal.Zero,
		ShippingFee:       decimal.Zero,
		Total:             decimal.Zero,
		PaymentMethod:     method,
		PaymentStatus:     PaymentStatusPending,
		Status:            OrderStatusPending,
	}, nil
}

// AddItem appends a line snapshot; only pending orders accept items
func (o *Order) AddItem(productID uuid.UUID, name, image, color, size string, unitPrice decimal.Decimal, quantity int) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Items can only be added to pending orders")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product cannot be empty")
	}
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	o.Items = append(o.Items, OrderItem{
		ID:          uuid.New(),
		OrderID:     o.ID,
		ProductID:   productID,
		ProductName: name,
		Image:       image,
		Color:       color,
		Size:        size,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		Amount:      unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	})
	o.recalculateTotals()
	return nil
}

// ApplyPromotion records the promotion and its discount
func (o *Order) ApplyPromotion(promotionID uuid.UUID, code string, discount decimal.Decimal, shippingWaived bool) error {
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	o.PromotionID = &promotionID
	o.PromotionCode = code
	o.DiscountAmount = discount
	if shippingWaived {
		o.ShippingFee = decimal.Zero
	}
	o.recalculateTotals()
	return nil
}

// SetShippingFee sets the delivery charge
func (o *Order) SetShippingFee(fee decimal.Decimal) error {
	if fee.IsNegative() {
		return shared.NewDomainError("INVALID_SHIPPING_FEE", "Shipping fee cannot be negative")
	}
	o.ShippingFee = fee
	o.recalculateTotals()
	return nil
}

// Place finalizes a freshly built order and publishes OrderPlaced
func (o *Order) Place() error {
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot place an order without items")
	}
	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return nil
}

// StartProcessing moves a pending order into processing
func (o *Order) StartProcessing() error {
	if err := o.transition(OrderStatusProcessing); err != nil {
		return err
	}
	now := time.Now()
	o.ProcessedAt = &now
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, OrderStatusPending))
	return nil
}

// Ship marks the order shipped with carrier tracking details
func (o *Order) Ship(carrier, trackingNumber string) error {
	carrier, trackingNumber = strings.TrimSpace(carrier), strings.TrimSpace(trackingNumber)
	if carrier == "" || trackingNumber == "" {
		return shared.NewDomainError("INVALID_TRACKING", "Carrier and tracking number are required")
	}
	old := o.Status
	if err := o.transition(OrderStatusShipped); err != nil {
		return err
	}
	now := time.Now()
	o.Carrier = carrier
	o.TrackingNumber = trackingNumber
	o.ShippedAt = &now
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old))
	return nil
}

// Deliver marks the order delivered; cash on delivery counts as paid
func (o *Order) Deliver() error {
	if err := o.transition(OrderStatusDelivered); err != nil {
		return err
	}
	now := time.Now()
	o.DeliveredAt = &now
	if o.PaymentMethod == PaymentMethodCashOnDelivery && o.PaymentStatus == PaymentStatusPending {
		o.PaymentStatus = PaymentStatusPaid
	}
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, OrderStatusShipped))
	return nil
}

// Cancel cancels an order that has not shipped yet
func (o *Order) Cancel(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	old := o.Status
	if err := o.transition(OrderStatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	o.CancelledAt = &now
	o.CancelReason = reason
	if o.PaymentStatus == PaymentStatusPaid {
		o.PaymentStatus = PaymentStatusRefunded
	}
	o.AddDomainEvent(NewOrderCancelledEvent(o, old))
	return nil
}

func (o *Order) transition(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	o.Status = target
	o.IncrementVersion()
	return nil
}

// MarkPaid records a successful payment
func (o *Order) MarkPaid(reference string) error {
	if o.Status == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot pay for a cancelled order")
	}
	if o.PaymentStatus == PaymentStatusPaid {
		return nil
	}
	o.PaymentStatus = PaymentStatusPaid
	if reference != "" {
		o.PaymentReference = reference
	}
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderPaidEvent(o))
	return nil
}

// MarkPaymentFailed records a declined payment
func (o *Order) MarkPaymentFailed() {
	if o.PaymentStatus == PaymentStatusPaid {
		return
	}
	o.PaymentStatus = PaymentStatusFailed
	o.IncrementVersion()
}

// SetPaymentReference stores the gateway reference, e.g. a payment intent ID
func (o *Order) SetPaymentReference(reference string) {
	o.PaymentReference = reference
	o.IncrementVersion()
}

// IsOwnedBy reports whether customerID placed the order
func (o *Order) IsOwnedBy(customerID uuid.UUID) bool {
	return o.CustomerID == customerID
}

// ItemCount sums the quantities
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	o.Subtotal = subtotal
	if o.DiscountAmount.GreaterThan(subtotal) {
		o.DiscountAmount = subtotal
	}
	o.Total = subtotal.Sub(o.DiscountAmount).Add(o.ShippingFee)
}

// NewOrderNumber formats a human-readable order number from a date and sequence
func NewOrderNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("SO-%s-%06d", at.Format("20060102"), seq)
}
