package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// AddressDTO is a shipping address in requests and responses
type AddressDTO struct {
	FullName   string `json:"full_name" binding:"required,max=100"`
	Phone      string `json:"phone" binding:"max=50"`
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,len=2"`
}

func (a AddressDTO) toDomain() shared.Address {
	return shared.Address{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func toAddressDTO(a shared.Address) AddressDTO {
	return AddressDTO{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// CheckoutRequest turns the caller's cart into an order
type CheckoutRequest struct {
	ShippingAddress AddressDTO `json:"shipping_address" binding:"required"`
	PaymentMethod   string     `json:"payment_method" binding:"required,oneof=card cash_on_delivery bank_transfer"`
	PromotionCode   string     `json:"promotion_code" binding:"omitempty,max=32"`
	Note            string     `json:"note" binding:"max=1000"`
}

// CheckoutResponse is the placed order plus what the client needs to pay.
// PaymentError is set when the order was placed but the card payment could
// not be started; the client may retry through the pay endpoint.
type CheckoutResponse struct {
	Order        OrderResponse `json:"order"`
	ClientSecret string        `json:"client_secret,omitempty"`
	PaymentError string        `json:"payment_error,omitempty"`
}

// CancelOrderRequest carries the cancellation reason
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// UpdateOrderStatusRequest moves an order along its lifecycle
type UpdateOrderStatusRequest struct {
	Status         string `json:"status" binding:"required,oneof=processing shipped delivered cancelled"`
	Carrier        string `json:"carrier" binding:"max=50"`
	TrackingNumber string `json:"tracking_number" binding:"max=100"`
	Reason         string `json:"reason" binding:"max=500"`
}

// OrderListFilter are the order listing parameters
type OrderListFilter struct {
	Status        string `form:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=pending paid failed refunded"`
	Search        string `form:"search" binding:"max=100"`
	Page          int    `form:"page" binding:"min=0"`
	PageSize      int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderItemResponse is an order line
type OrderItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Image       string          `json:"image"`
	Color       string          `json:"color,omitempty"`
	Size        string          `json:"size,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	OrderNumber      string              `json:"order_number"`
	CustomerID       uuid.UUID           `json:"customer_id"`
	CustomerName     string              `json:"customer_name"`
	CustomerEmail    string              `json:"customer_email"`
	ShippingAddress  AddressDTO          `json:"shipping_address"`
	Items            []OrderItemResponse `json:"items"`
	ItemCount        int                 `json:"item_count"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	DiscountAmount   decimal.Decimal     `json:"discount_amount"`
	ShippingFee      decimal.Decimal     `json:"shipping_fee"`
	Total            decimal.Decimal     `json:"total"`
	PromotionCode    string              `json:"promotion_code,omitempty"`
	PaymentMethod    string              `json:"payment_method"`
	PaymentStatus    string              `json:"payment_status"`
	PaymentReference string              `json:"payment_reference,omitempty"`
	Status           string              `json:"status"`
	Carrier          string              `json:"carrier,omitempty"`
	TrackingNumber   string              `json:"tracking_number,omitempty"`
	Note             string              `json:"note,omitempty"`
	CancelReason     string              `json:"cancel_reason,omitempty"`
	ProcessedAt      *time.Time          `json:"processed_at,omitempty"`
	ShippedAt        *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt      *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Version          int                 `json:"version"`
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Image:       it.Image,
			Color:       it.Color,
			Size:        it.Size,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Amount:      it.Amount,
		}
	}
	return OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		CustomerID:       o.CustomerID,
		CustomerName:     o.CustomerName,
		CustomerEmail:    o.CustomerEmail,
		ShippingAddress:  toAddressDTO(o.ShippingAddress),
		Items:            items,
		ItemCount:        o.ItemCount(),
		Subtotal:         o.Subtotal,
		DiscountAmount:   o.DiscountAmount,
		ShippingFee:      o.ShippingFee,
		Total:            o.Total,
		PromotionCode:    o.PromotionCode,
		PaymentMethod:    string(o.PaymentMethod),
		PaymentStatus:    string(o.PaymentStatus),
		PaymentReference: o.PaymentReference,
		Status:           string(o.Status),
		Carrier:          o.Carrier,
		TrackingNumber:   o.TrackingNumber,
		Note:             o.Note,
		CancelReason:     o.CancelReason,
		ProcessedAt:      o.ProcessedAt,
		ShippedAt:        o.ShippedAt,
		DeliveredAt:      o.DeliveredAt,
		CancelledAt:      o.CancelledAt,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Version:          o.Version,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

func (f OrderListFilter) toFilter() shared.Filter {
	out := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalized()
	if f.Status != "" {
		out.Filters[filterStatus] = trade.OrderStatus(f.Status)
	}
	if f.PaymentStatus != "" {
		out.Filters[filterPaymentStatus] = trade.PaymentStatus(f.PaymentStatus)
	}
	return out
}
