package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
)

var (
	sellerSortFields   = commonSortFields.with("name", "email", "status")
	shopSortFields     = commonSortFields.with("name", "slug", "status")
	customerSortFields = commonSortFields.with("name", "email", "status", "order_count", "total_spent")
)

// GormSellerRepository implements partner.SellerRepository using GORM
type GormSellerRepository struct {
	db *gorm.DB
}

// NewGormSellerRepository creates a new GormSellerRepository
func NewGormSellerRepository(db *gorm.DB) *GormSellerRepository {
	return &GormSellerRepository{db: db}
}

func (r *GormSellerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Seller, error) {
	var s partner.Seller
	if err := conn(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *GormSellerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Seller, error) {
	var sellers []partner.Seller
	query := r.applyFilter(conn(ctx, r.db).Model(&partner.Seller{}), filter)
	if err := paginate(query, filter, sellerSortFields, "created_at").Find(&sellers).Error; err != nil {
		return nil, err
	}
	return sellers, nil
}

func (r *GormSellerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(conn(ctx, r.db).Model(&partner.Seller{}), filter).Count(&count).Error
	return count, err
}

func (r *GormSellerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&partner.Seller{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormSellerRepository) Save(ctx context.Context, s *partner.Seller) error {
	return conn(ctx, r.db).Save(s).Error
}

func (r *GormSellerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(conn(ctx, r.db), &partner.Seller{}, id)
}

func (r *GormSellerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = search(query, filter.Search, "name", "email", "company_name")
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}
	return query
}

// GormShopRepository implements partner.ShopRepository using GORM
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new GormShopRepository
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

func (r *GormShopRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Shop, error) {
	var s partner.Shop
	if err := conn(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *GormShopRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Shop, error) {
	var shops []partner.Shop
	query := r.applyFilter(conn(ctx, r.db).Model(&partner.Shop{}), filter)
	if err := paginate(query, filter, shopSortFields, "created_at").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *GormShopRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(conn(ctx, r.db).Model(&partner.Shop{}), filter).Count(&count).Error
	return count, err
}

func (r *GormShopRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&partner.Shop{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormShopRepository) Save(ctx context.Context, s *partner.Shop) error {
	return conn(ctx, r.db).Save(s).Error
}

func (r *GormShopRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(conn(ctx, r.db), &partner.Shop{}, id)
}

func (r *GormShopRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = search(query, filter.Search, "name", "slug")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "seller_id":
			query = query.Where("seller_id = ?", value)
		}
	}
	return query
}

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *GormCustomerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*partner.Customer, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*partner.Customer, error) {
	return r.findOne(ctx, "email = ?", normalizeEmail(email))
}

func (r *GormCustomerRepository) findOne(ctx context.Context, query string, arg any) (*partner.Customer, error) {
	var c partner.Customer
	if err := conn(ctx, r.db).First(&c, query, arg).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	var customers []partner.Customer
	query := r.applyFilter(conn(ctx, r.db).Model(&partner.Customer{}), filter)
	if err := paginate(query, filter, customerSortFields, "created_at").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(conn(ctx, r.db).Model(&partner.Customer{}), filter).Count(&count).Error
	return count, err
}

func (r *GormCustomerRepository) Save(ctx context.Context, c *partner.Customer) error {
	return conn(ctx, r.db).Save(c).Error
}

func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(conn(ctx, r.db), &partner.Customer{}, id)
}

func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = search(query, filter.Search, "name", "email", "phone")
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}
	return query
}

var (
	_ partner.SellerRepository   = (*GormSellerRepository)(nil)
	_ partner.ShopRepository     = (*GormShopRepository)(nil)
	_ partner.CustomerRepository = (*GormCustomerRepository)(nil)
)
