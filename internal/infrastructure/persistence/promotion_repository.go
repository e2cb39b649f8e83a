package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/backend/internal/domain/promotion"
	"github.com/shopfront/backend/internal/domain/shared"
)

var promotionSortFields = commonSortFields.with("code", "name", "starts_at", "ends_at", "used_count")

// GormPromotionRepository implements promotion.Repository using GORM
type GormPromotionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormPromotionRepository creates a new GormPromotionRepository
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db, now: time.Now}
}

// FindByID finds a promotion by ID
func (r *GormPromotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Promotion, error) {
	var p promotion.Promotion
	if err := conn(ctx, r.db).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindByCode finds a promotion by its normalized code
func (r *GormPromotionRepository) FindByCode(ctx context.Context, code string) (*promotion.Promotion, error) {
	var p promotion.Promotion
	if err := conn(ctx, r.db).First(&p, "code = ?", promotion.NormalizeCode(code)).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindAll finds promotions matching the filter
func (r *GormPromotionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]promotion.Promotion, error) {
	var promotions []promotion.Promotion
	query := r.applyFilter(conn(ctx, r.db).Model(&promotion.Promotion{}), filter)
	query = paginate(query, filter, promotionSortFields, "created_at")
	if err := query.Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

// Count counts promotions matching the filter
func (r *GormPromotionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(conn(ctx, r.db).Model(&promotion.Promotion{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode reports whether code is taken
func (r *GormPromotionRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&promotion.Promotion{}).
		Where("code = ?", promotion.NormalizeCode(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a promotion
func (r *GormPromotionRepository) Save(ctx context.Context, p *promotion.Promotion) error {
	return conn(ctx, r.db).Save(p).Error
}

// Delete deletes a promotion
func (r *GormPromotionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(conn(ctx, r.db), &promotion.Promotion{}, id)
}

// IncrementUsage counts one use unless the usage limit is reached
func (r *GormPromotionRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Model(&promotion.Promotion{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", id).
		Updates(map[string]any{
			"used_count": gorm.Expr("used_count + 1"),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return promotion.ErrUsageLimitReached
	}
	return nil
}

// DecrementUsage gives one use back
func (r *GormPromotionRepository) DecrementUsage(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Model(&promotion.Promotion{}).
		Where("id = ? AND used_count > 0", id).
		Updates(map[string]any{
			"used_count": gorm.Expr("used_count - 1"),
			"version":    gorm.Expr("version + 1"),
		}).Error
}

// CountRedemptions counts how often customerID used the promotion
func (r *GormPromotionRepository) CountRedemptions(ctx context.Context, promotionID, customerID uuid.UUID) (int, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&promotion.Redemption{}).
		Where("promotion_id = ? AND customer_id = ?", promotionID, customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// SaveRedemption records a redemption
func (r *GormPromotionRepository) SaveRedemption(ctx context.Context, redemption *promotion.Redemption) error {
	return conn(ctx, r.db).Create(redemption).Error
}

// DeleteRedemptionByOrder removes the redemption recorded for an order
func (r *GormPromotionRepository) DeleteRedemptionByOrder(ctx context.Context, orderID uuid.UUID) error {
	return conn(ctx, r.db).Where("order_id = ?", orderID).Delete(&promotion.Redemption{}).Error
}

// applyFilter translates the derived listing status into column predicates
// matching Promotion.StatusAt.
func (r *GormPromotionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = search(query, filter.Search, "code", "name")
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "status":
			status, ok := value.(promotion.Status)
			if !ok {
				if s, isString := value.(string); isString {
					status = promotion.Status(s)
				}
			}
			query = r.statusScope(query, status)
		}
	}
	return query
}

func (r *GormPromotionRepository) statusScope(query *gorm.DB, status promotion.Status) *gorm.DB {
	now := r.now()
	const (
		notExpired   = "(ends_at IS NULL OR ends_at > ?)"
		started      = "(starts_at IS NULL OR starts_at <= ?)"
		hasUsageLeft = "(usage_limit = 0 OR used_count < usage_limit)"
	)
	switch status {
	case promotion.StatusInactive:
		return query.Where("active = ?", false)
	case promotion.StatusExpired:
		return query.Where("active = ? AND ends_at IS NOT NULL AND ends_at <= ?", true, now)
	case promotion.StatusScheduled:
		return query.Where("active = ? AND "+notExpired+" AND starts_at IS NOT NULL AND starts_at > ?", true, now, now)
	case promotion.StatusExhausted:
		return query.Where("active = ? AND "+notExpired+" AND "+started+" AND NOT "+hasUsageLeft, true, now, now)
	case promotion.StatusActive:
		return query.Where("active = ? AND "+notExpired+" AND "+started+" AND "+hasUsageLeft, true, now, now)
	}
	return query
}

var _ promotion.Repository = (*GormPromotionRepository)(nil)
