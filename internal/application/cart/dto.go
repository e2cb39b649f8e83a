package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=999"`
	Color     string    `json:"color" binding:"max=50"`
	Size      string    `json:"size" binding:"max=20"`
}

// UpdateItemRequest changes the quantity of a cart line
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=999"`
}

// LineItemResponse is a cart line with its computed total
type LineItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartResponse represents a cart in API responses
type CartResponse struct {
	Items     []LineItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ToCartResponse converts a domain cart to a response
func ToCartResponse(c *cart.Cart) CartResponse {
	items := make([]LineItemResponse, len(c.Items))
	for i, l := range c.Items {
		items[i] = LineItemResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Image:     l.Image,
			Color:     l.Color,
			Size:      l.Size,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal(),
		}
	}
	return CartResponse{
		Items:     items,
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal(),
		UpdatedAt: c.UpdatedAt,
	}
}
