package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/backend/internal/domain/marketing"
)

// GormSubscriberRepository implements marketing.SubscriberRepository using GORM
type GormSubscriberRepository struct {
	db *gorm.DB
}

// NewGormSubscriberRepository creates a new GormSubscriberRepository
func NewGormSubscriberRepository(db *gorm.DB) *GormSubscriberRepository {
	return &GormSubscriberRepository{db: db}
}

func (r *GormSubscriberRepository) FindByEmail(ctx context.Context, email string) (*marketing.Subscriber, error) {
	var s marketing.Subscriber
	if err := conn(ctx, r.db).First(&s, "email = ?", normalizeEmail(email)).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *GormSubscriberRepository) FindByToken(ctx context.Context, token uuid.UUID) (*marketing.Subscriber, error) {
	var s marketing.Subscriber
	if err := conn(ctx, r.db).First(&s, "token = ?", token).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *GormSubscriberRepository) CountByStatus(ctx context.Context, status marketing.SubscriberStatus) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&marketing.Subscriber{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *GormSubscriberRepository) Save(ctx context.Context, s *marketing.Subscriber) error {
	return conn(ctx, r.db).Save(s).Error
}

var _ marketing.SubscriberRepository = (*GormSubscriberRepository)(nil)
