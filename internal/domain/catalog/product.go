package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// IsValid reports whether s is a known product status
func (s ProductStatus) IsValid() bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}

// ColorOption is a selectable color, optionally with its own image
type ColorOption struct {
	Name  string `json:"name"`
	Hex   string `json:"hex"`
	Image string `json:"image,omitempty"`
}

// Specification is one ordered key/value row of the specification table
type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Product is the sellable item shown on the storefront
type Product struct {
	shared.BaseAggregateRoot
	Name              string           `gorm:"type:varchar(200);not null;index"`
	Description       string           `gorm:"type:text"`
	CategoryID        *uuid.UUID       `gorm:"type:uuid;index"`
	ShopID            *uuid.UUID       `gorm:"type:uuid;index"`
	Price             decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	SalePrice         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Image             string           `gorm:"type:varchar(500)"`
	Thumbnails        []string         `gorm:"serializer:json;type:jsonb"`
	Stock             int              `gorm:"not null;default:0"`
	Colors            []ColorOption    `gorm:"serializer:json;type:jsonb"`
	Sizes             []string         `gorm:"serializer:json;type:jsonb"`
	Specifications    []Specification  `gorm:"serializer:json;type:jsonb"`
	RelatedProductIDs []uuid.UUID      `gorm:"serializer:json;type:jsonb"`
	Status            ProductStatus    `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates an active product
func NewProduct(name string, price decimal.Decimal, stock int) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Price:             price,
		Stock:             stock,
		Thumbnails:        []string{},
		Colors:            []ColorOption{},
		Sizes:             []string{},
		Specifications:    []Specification{},
		RelatedProductIDs: []uuid.UUID{},
		Status:            ProductStatusActive,
	}
	product.AddDomainEvent(NewProductCreatedEvent(product))
	return product, nil
}

// Update changes the descriptive fields
func (p *Product) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = name
	p.Description = description
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// SetCategory moves the product to another category; nil clears it
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// SetShop assigns the shop that sells the product
func (p *Product) SetShop(shopID *uuid.UUID) {
	p.ShopID = shopID
	p.IncrementVersion()
}

// SetPricing sets list price and optional sale price.
// A sale price must be positive and strictly below the list price.
func (p *Product) SetPricing(price decimal.Decimal, salePrice *decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if salePrice != nil {
		if !salePrice.IsPositive() {
			return shared.NewDomainError("INVALID_SALE_PRICE", "Sale price must be positive")
		}
		if salePrice.GreaterThanOrEqual(price) {
			return shared.NewDomainError("INVALID_SALE_PRICE", "Sale price must be lower than the price")
		}
		sp := *salePrice
		salePrice = &sp
	}
	p.Price = price
	p.SalePrice = salePrice
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// SetStock overwrites the stock count
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	old := p.Stock
	p.Stock = stock
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStockChangedEvent(p, old))
	return nil
}

// AdjustStock adds delta to the stock; the result may not go negative
func (p *Product) AdjustStock(delta int) error {
	if p.Stock+delta < 0 {
		return shared.ErrInsufficientStock
	}
	old := p.Stock
	p.Stock += delta
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStockChangedEvent(p, old))
	return nil
}

// SetMedia replaces the primary image and the thumbnail list
func (p *Product) SetMedia(image string, thumbnails []string) {
	p.Image = strings.TrimSpace(image)
	p.Thumbnails = compactStrings(thumbnails)
	p.IncrementVersion()
}

// SetVariants replaces the color and size options
func (p *Product) SetVariants(colors []ColorOption, sizes []string) error {
	seen := make(map[string]struct{}, len(colors))
	out := make([]ColorOption, 0, len(colors))
	for _, c := range colors {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return shared.NewDomainError("INVALID_COLOR", "Color name cannot be empty")
		}
		key := strings.ToLower(c.Name)
		if _, dup := seen[key]; dup {
			return shared.NewDomainError("INVALID_COLOR", "Duplicate color: "+c.Name)
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	p.Colors = out
	p.Sizes = compactStrings(sizes)
	p.IncrementVersion()
	return nil
}

// SetSpecifications replaces the specification table, keeping row order
func (p *Product) SetSpecifications(specs []Specification) {
	out := make([]Specification, 0, len(specs))
	for _, s := range specs {
		s.Key = strings.TrimSpace(s.Key)
		if s.Key == "" {
			continue
		}
		out = append(out, s)
	}
	p.Specifications = out
	p.IncrementVersion()
}

// SetRelated replaces the related product references, dropping self and duplicates
func (p *Product) SetRelated(ids []uuid.UUID) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == p.ID || id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	p.RelatedProductIDs = out
	p.IncrementVersion()
}

// Activate makes the product visible on the storefront
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.changeStatus(ProductStatusActive)
	return nil
}

// Deactivate hides the product from the storefront
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.changeStatus(ProductStatusInactive)
	return nil
}

func (p *Product) changeStatus(status ProductStatus) {
	old := p.Status
	p.Status = status
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStatusChangedEvent(p, old, status))
}

// IsActive reports whether shoppers can see the product
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// InStock reports whether at least one unit is available
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// DiscountPercent is the advertised discount of the sale price over the list price
func (p *Product) DiscountPercent() int {
	return DiscountPercent(p.Price, p.SalePrice)
}

// EffectivePrice is the price a shopper pays for one unit
func (p *Product) EffectivePrice() decimal.Decimal {
	return EffectivePrice(p.Price, p.SalePrice)
}

// HasColor reports whether name is one of the color options
func (p *Product) HasColor(name string) bool {
	_, ok := p.Color(name)
	return ok
}

// Color looks a color option up by name, case-insensitively
func (p *Product) Color(name string) (ColorOption, bool) {
	for _, c := range p.Colors {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColorOption{}, false
}

// HasSize reports whether size is one of the size options
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if strings.EqualFold(s, size) {
			return true
		}
	}
	return false
}

// ImageForColor returns the color's own image if it has one, else the primary image
func (p *Product) ImageForColor(name string) string {
	if c, ok := p.Color(name); ok && c.Image != "" {
		return c.Image
	}
	return p.Image
}

// DiscountPercent computes round((price - sale) / price * 100).
// It is 0 unless both price and sale are positive, and never negative.
func DiscountPercent(price decimal.Decimal, sale *decimal.Decimal) int {
	if sale == nil || !price.IsPositive() || !sale.IsPositive() {
		return 0
	}
	pct := price.Sub(*sale).Div(price).Mul(decimal.NewFromInt(100)).Round(0)
	if pct.IsNegative() {
		return 0
	}
	return int(pct.IntPart())
}

// EffectivePrice returns the sale price when it is positive, else the list price
func EffectivePrice(price decimal.Decimal, sale *decimal.Decimal) decimal.Decimal {
	if sale != nil && sale.IsPositive() {
		return *sale
	}
	return price
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
