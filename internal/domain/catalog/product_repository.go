package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// Filter keys understood by ProductRepository.FindAll and Count
const (
	FilterCategoryID = "category_id"
	FilterStatus     = "status"
	FilterShopID     = "shop_id"
	FilterExclude    = "exclude"
	FilterOnSale     = "on_sale"
	FilterInStock    = "in_stock"
	FilterMinPrice   = "min_price"
	FilterMaxPrice   = "max_price"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs returns the products found, in no particular order
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll finds products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindRandom samples active products, skipping the excluded IDs
	FindRandom(ctx context.Context, limit int, exclude []uuid.UUID) ([]Product, error)

	Save(ctx context.Context, product *Product) error

	// AdjustStock atomically adds delta to the stock and returns the new
	// level. A change that would go below zero fails with
	// shared.ErrInsufficientStock and leaves the row untouched.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}
