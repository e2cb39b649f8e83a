package cart

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaxLines caps the number of distinct lines in one cart
const MaxLines = 50

// LineItem is one product/color/size combination in a cart
type LineItem struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	CategoryID *uuid.UUID      `json:"category_id,omitempty"`
	Name       string          `json:"name"`
	Image      string          `json:"image"`
	Color      string          `json:"color,omitempty"`
	Size       string          `json:"size,omitempty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

// LineTotal is unit price times quantity
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l LineItem) matches(productID uuid.UUID, color, size string) bool {
	return l.ProductID == productID && l.Color == color && l.Size == size
}

// Cart holds a shopper's line items between visits
type Cart struct {
	OwnerID   uuid.UUID  `json:"owner_id"`
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// New returns an empty cart for owner
func New(ownerID uuid.UUID) *Cart {
	return &Cart{OwnerID: ownerID, Items: []LineItem{}, UpdatedAt: time.Now()}
}

// AddItem adds quantity units of p. An identical product/color/size line is
// merged; the merged quantity may not exceed the product's stock.
func (c *Cart) AddItem(p *catalog.Product, quantity int, color, size string) (*LineItem, error) {
	if !p.IsActive() {
		return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if len(p.Colors) > 0 {
		opt, ok := p.Color(color)
		if !ok {
			return nil, shared.NewDomainError("INVALID_COLOR", "Please select a valid color")
		}
		color = opt.Name
	} else {
		color = ""
	}
	if len(p.Sizes) > 0 {
		if !p.HasSize(size) {
			return nil, shared.NewDomainError("INVALID_SIZE", "Please select a valid size")
		}
	} else {
		size = ""
	}

	for i := range c.Items {
		if !c.Items[i].matches(p.ID, color, size) {
			continue
		}
		if err := checkStock(c.Items[i].Quantity+quantity, p.Stock); err != nil {
			return nil, err
		}
		c.Items[i].Quantity += quantity
		c.Items[i].UnitPrice = p.EffectivePrice()
		c.touch()
		return &c.Items[i], nil
	}

	if len(c.Items) >= MaxLines {
		return nil, shared.NewDomainError("CART_FULL", "Cart cannot hold more than 50 lines")
	}
	if err := checkStock(quantity, p.Stock); err != nil {
		return nil, err
	}
	c.Items = append(c.Items, LineItem{
		ID:         uuid.New(),
		ProductID:  p.ID,
		CategoryID: p.CategoryID,
		Name:       p.Name,
		Image:      p.ImageForColor(color),
		Color:      color,
		Size:       size,
		UnitPrice:  p.EffectivePrice(),
		Quantity:   quantity,
	})
	c.touch()
	return &c.Items[len(c.Items)-1], nil
}

// SetQuantity changes a line's quantity, bounded by stock
func (c *Cart) SetQuantity(lineID uuid.UUID, quantity, stock int) error {
	i := c.indexOf(lineID)
	if i < 0 {
		return shared.NewDomainError("LINE_NOT_FOUND", "Cart line not found")
	}
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if err := checkStock(quantity, stock); err != nil {
		return err
	}
	c.Items[i].Quantity = quantity
	c.touch()
	return nil
}

// Line returns the line with the given ID
func (c *Cart) Line(lineID uuid.UUID) (LineItem, bool) {
	if i := c.indexOf(lineID); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

// Remove drops a line
func (c *Cart) Remove(lineID uuid.UUID) error {
	i := c.indexOf(lineID)
	if i < 0 {
		return shared.NewDomainError("LINE_NOT_FOUND", "Cart line not found")
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.touch()
	return nil
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.touch()
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Subtotal sums the line totals
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Items {
		total = total.Add(l.LineTotal())
	}
	return total
}

// ItemCount sums the quantities
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

func (c *Cart) indexOf(lineID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ID == lineID {
			return i
		}
	}
	return -1
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}

func checkStock(quantity, stock int) error {
	if quantity > stock {
		return shared.NewDomainError("INSUFFICIENT_STOCK", fmt.Sprintf("Only %d left in stock", stock))
	}
	return nil
}
