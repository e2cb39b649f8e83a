package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
)

var orderSortFields = commonSortFields.with("order_number", "total", "status", "payment_status")

// orderSequence holds the last order number issued per day
type orderSequence struct {
	Day   string `gorm:"type:varchar(8);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

func (orderSequence) TableName() string {
	return "order_sequences"
}

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by ID with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByOrderNumber finds an order by its order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.Order, error) {
	return r.findOne(ctx, "order_number = ?", orderNumber)
}

// FindByPaymentReference finds the order paid by a provider reference
func (r *GormOrderRepository) FindByPaymentReference(ctx context.Context, reference string) (*trade.Order, error) {
	if reference == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "payment_reference = ?", reference)
}

func (r *GormOrderRepository) findOne(ctx context.Context, query string, arg any) (*trade.Order, error) {
	var order trade.Order
	err := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("product_name ASC, id ASC") }).
		First(&order, query, arg).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// FindAll finds orders matching the filter, items included
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, error) {
	var orders []trade.Order
	query := r.applyFilter(conn(ctx, r.db).Model(&trade.Order{}), filter)
	query = paginate(query, filter, orderSortFields, "created_at")
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(conn(ctx, r.db).Model(&trade.Order{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus returns the number of orders in each status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[trade.OrderStatus]int64, error) {
	var rows []struct {
		Status trade.OrderStatus
		Total  int64
	}
	if err := conn(ctx, r.db).Model(&trade.Order{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[trade.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// Save persists the order and reconciles its items
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return err
		}

		ids := make([]uuid.UUID, len(order.Items))
		for i, item := range order.Items {
			ids[i] = item.ID
		}
		stale := tx.Where("order_id = ?", order.ID)
		if len(ids) > 0 {
			stale = stale.Where("id NOT IN ?", ids)
		}
		if err := stale.Delete(&trade.OrderItem{}).Error; err != nil {
			return err
		}

		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			if err := tx.Save(&order.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes an order and its items
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&trade.OrderItem{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &trade.Order{}, id)
	})
}

// NextOrderNumber bumps the per-day counter and formats the result.
// The upsert row lock serializes concurrent checkouts on the same day.
func (r *GormOrderRepository) NextOrderNumber(ctx context.Context, at time.Time) (string, error) {
	day := at.UTC().Format("20060102")
	var seq orderSequence
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "day"}},
			DoUpdates: clause.Assignments(map[string]any{"value": gorm.Expr("order_sequences.value + 1")}),
		}).Create(&orderSequence{Day: day, Value: 1}).Error; err != nil {
			return err
		}
		return tx.First(&seq, "day = ?", day).Error
	})
	if err != nil {
		return "", err
	}
	return trade.NewOrderNumber(at.UTC(), seq.Value), nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = search(query, filter.Search, "order_number", "customer_name", "customer_email")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		}
	}
	return query
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
