package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
)

var productSortFields = commonSortFields.with("name", "price", "stock", "status")

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := conn(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByIDs finds the products with the given IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAll finds products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applyFilter(conn(ctx, r.db).Model(&catalog.Product{}), filter)
	query = paginate(query, filter, productSortFields, "created_at")
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindRandom samples active products, skipping the excluded IDs
func (r *GormProductRepository) FindRandom(ctx context.Context, limit int, exclude []uuid.UUID) ([]catalog.Product, error) {
	if limit <= 0 {
		return []catalog.Product{}, nil
	}
	query := conn(ctx, r.db).Where("status = ?", catalog.ProductStatusActive)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}
	var products []catalog.Product
	if err := query.Order("RANDOM()").Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return conn(ctx, r.db).Save(product).Error
}

// AdjustStock adds delta to the stock in a single guarded UPDATE
func (r *GormProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	db := conn(ctx, r.db)
	result := db.Model(&catalog.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", delta),
			"version":    gorm.Expr("version + 1"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return 0, result.Error
	}

	var stock int
	if err := db.Model(&catalog.Product{}).Where("id = ?", id).Pluck("stock", &stock).Error; err != nil {
		return 0, err
	}
	if result.RowsAffected == 0 {
		var exists int64
		if err := db.Model(&catalog.Product{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return 0, err
		}
		if exists == 0 {
			return 0, shared.ErrNotFound
		}
		return stock, shared.ErrInsufficientStock
	}
	return stock, nil
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(conn(ctx, r.db), &catalog.Product{}, id)
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&catalog.Product{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCategory counts products in a category
func (r *GormProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&catalog.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = search(query, filter.Search, "name", "description")

	for key, value := range filter.Filters {
		switch key {
		case catalog.FilterStatus:
			query = query.Where("status = ?", value)
		case catalog.FilterCategoryID:
			query = query.Where("category_id = ?", value)
		case catalog.FilterShopID:
			query = query.Where("shop_id = ?", value)
		case catalog.FilterExclude:
			if ids, ok := value.([]uuid.UUID); ok && len(ids) > 0 {
				query = query.Where("id NOT IN ?", ids)
			}
		case catalog.FilterOnSale:
			if value == true {
				query = query.Where("sale_price IS NOT NULL AND sale_price < price")
			}
		case catalog.FilterInStock:
			if value == true {
				query = query.Where("stock > 0")
			}
		case catalog.FilterMinPrice:
			query = query.Where("COALESCE(sale_price, price) >= ?", value)
		case catalog.FilterMaxPrice:
			query = query.Where("COALESCE(sale_price, price) <= ?", value)
		}
	}
	return query
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
