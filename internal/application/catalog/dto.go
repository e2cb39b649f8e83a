package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ColorOptionDTO is a color choice of a product
type ColorOptionDTO struct {
	Name  string `json:"name" binding:"required,max=50"`
	Hex   string `json:"hex" binding:"omitempty,hexcolor"`
	Image string `json:"image,omitempty" binding:"omitempty,url"`
}

// SpecificationDTO is one key/value row of the specification table
type SpecificationDTO struct {
	Key   string `json:"key" binding:"required,max=100"`
	Value string `json:"value" binding:"max=500"`
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name              string             `json:"name" binding:"required,min=1,max=200"`
	Description       string             `json:"description" binding:"max=5000"`
	CategoryID        *uuid.UUID         `json:"category_id"`
	ShopID            *uuid.UUID         `json:"shop_id"`
	Price             decimal.Decimal    `json:"price"`
	SalePrice         *decimal.Decimal   `json:"sale_price"`
	Stock             int                `json:"stock" binding:"min=0"`
	Image             string             `json:"image" binding:"omitempty,max=500"`
	Thumbnails        []string           `json:"thumbnails" binding:"max=12"`
	Colors            []ColorOptionDTO   `json:"colors" binding:"max=20,dive"`
	Sizes             []string           `json:"sizes" binding:"max=20"`
	Specifications    []SpecificationDTO `json:"specifications" binding:"max=50,dive"`
	RelatedProductIDs []uuid.UUID        `json:"related_product_ids" binding:"max=20"`
	Inactive          bool               `json:"inactive"`
}

// UpdateProductRequest represents a request to update a product. Nil fields
// are left untouched.
type UpdateProductRequest struct {
	Name              *string            `json:"name" binding:"omitempty,min=1,max=200"`
	Description       *string            `json:"description" binding:"omitempty,max=5000"`
	CategoryID        *uuid.UUID         `json:"category_id"`
	ClearCategory     bool               `json:"clear_category"`
	Image             *string            `json:"image" binding:"omitempty,max=500"`
	Thumbnails        []string           `json:"thumbnails" binding:"omitempty,max=12"`
	Colors            []ColorOptionDTO   `json:"colors" binding:"omitempty,max=20,dive"`
	Sizes             []string           `json:"sizes" binding:"omitempty,max=20"`
	Specifications    []SpecificationDTO `json:"specifications" binding:"omitempty,max=50,dive"`
	RelatedProductIDs []uuid.UUID        `json:"related_product_ids" binding:"omitempty,max=20"`
}

// UpdatePricingRequest replaces the price and sale price together
type UpdatePricingRequest struct {
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"sale_price"`
}

// UpdateStockRequest either sets the stock level or adjusts it by a delta
type UpdateStockRequest struct {
	Stock *int `json:"stock" binding:"omitempty,min=0"`
	Delta *int `json:"delta"`
}

// ProductListFilter represents filter options for product list. IDs and
// prices arrive as strings from the query string and are parsed by the
// service.
type ProductListFilter struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	ShopID     string `form:"shop_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=active inactive"`
	OnSale     bool   `form:"on_sale"`
	InStock    bool   `form:"in_stock"`
	MinPrice   string `form:"min_price" binding:"omitempty,numeric"`
	MaxPrice   string `form:"max_price" binding:"omitempty,numeric"`
	// Exclude is a comma separated list of product IDs
	Exclude  string `form:"exclude"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                uuid.UUID          `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	CategoryID        *uuid.UUID         `json:"category_id,omitempty"`
	ShopID            *uuid.UUID         `json:"shop_id,omitempty"`
	Price             decimal.Decimal    `json:"price"`
	SalePrice         *decimal.Decimal   `json:"sale_price,omitempty"`
	EffectivePrice    decimal.Decimal    `json:"effective_price"`
	Discount          int                `json:"discount"`
	Image             string             `json:"image"`
	Thumbnails        []string           `json:"thumbnails"`
	Stock             int                `json:"stock"`
	InStock           bool               `json:"in_stock"`
	Colors            []ColorOptionDTO   `json:"colors"`
	Sizes             []string           `json:"sizes"`
	Specifications    []SpecificationDTO `json:"specifications"`
	RelatedProductIDs []uuid.UUID        `json:"related_product_ids"`
	Status            string             `json:"status"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Version           int                `json:"version"`
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=1000"`
	Image       string `json:"image" binding:"omitempty,max=500"`
	SortOrder   int    `json:"sort_order"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=1000"`
	Image       string `json:"image" binding:"omitempty,max=500"`
	SortOrder   *int   `json:"sort_order"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	SortOrder   int       `json:"sort_order"`
}

// InitiateImageUploadRequest asks for a presigned upload URL
type InitiateImageUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	FileSize    int64  `json:"file_size" binding:"required,min=1"`
}

// InitiateImageUploadResponse carries the URL the browser PUTs the file to
type InitiateImageUploadResponse struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	PublicURL  string    `json:"public_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ConfirmImageUploadRequest attaches an uploaded object to the product
type ConfirmImageUploadRequest struct {
	StorageKey string `json:"storage_key" binding:"required"`
	// AsPrimary makes the image the main product image; otherwise it is
	// appended to the thumbnails
	AsPrimary bool `json:"as_primary"`
	// Color ties the image to a color option
	Color string `json:"color"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	colors := make([]ColorOptionDTO, 0, len(p.Colors))
	for _, c := range p.Colors {
		colors = append(colors, ColorOptionDTO{Name: c.Name, Hex: c.Hex, Image: c.Image})
	}
	specs := make([]SpecificationDTO, 0, len(p.Specifications))
	for _, s := range p.Specifications {
		specs = append(specs, SpecificationDTO{Key: s.Key, Value: s.Value})
	}
	return ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		CategoryID:        p.CategoryID,
		ShopID:            p.ShopID,
		Price:             p.Price,
		SalePrice:         p.SalePrice,
		EffectivePrice:    p.EffectivePrice(),
		Discount:          p.DiscountPercent(),
		Image:             p.Image,
		Thumbnails:        nonNil(p.Thumbnails),
		Stock:             p.Stock,
		InStock:           p.InStock(),
		Colors:            colors,
		Sizes:             nonNil(p.Sizes),
		Specifications:    specs,
		RelatedProductIDs: nonNil(p.RelatedProductIDs),
		Status:            string(p.Status),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Version:           p.Version,
	}
}

// ToProductResponses converts a slice of domain Products to ProductResponses
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Image:       c.Image,
		SortOrder:   c.SortOrder,
	}
}

func toColorOptions(in []ColorOptionDTO) []catalog.ColorOption {
	out := make([]catalog.ColorOption, 0, len(in))
	for _, c := range in {
		out = append(out, catalog.ColorOption{Name: c.Name, Hex: c.Hex, Image: c.Image})
	}
	return out
}

func toSpecifications(in []SpecificationDTO) []catalog.Specification {
	out := make([]catalog.Specification, 0, len(in))
	for _, s := range in {
		out = append(out, catalog.Specification{Key: s.Key, Value: s.Value})
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
