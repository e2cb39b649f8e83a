package promotion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// Redemption records one use of a promotion by a customer
type Redemption struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	PromotionID uuid.UUID `gorm:"type:uuid;not null;index:idx_redemption_promo_customer"`
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;index:idx_redemption_promo_customer"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Redemption) TableName() string {
	return "promotion_redemptions"
}

// NewRedemption creates a redemption record
func NewRedemption(promotionID, customerID, orderID uuid.UUID) *Redemption {
	return &Redemption{
		ID:          uuid.New(),
		PromotionID: promotionID,
		CustomerID:  customerID,
		OrderID:     orderID,
		CreatedAt:   time.Now(),
	}
}

// Repository defines the interface for promotion persistence.
// FindAll understands the "status" filter key with a Status value.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Promotion, error)
	FindByCode(ctx context.Context, code string) (*Promotion, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Promotion, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, promotion *Promotion) error
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementUsage atomically counts one use, failing with
	// ErrUsageLimitReached once the usage limit is hit
	IncrementUsage(ctx context.Context, id uuid.UUID) error
	// DecrementUsage gives one use back, never going below zero
	DecrementUsage(ctx context.Context, id uuid.UUID) error

	CountRedemptions(ctx context.Context, promotionID, customerID uuid.UUID) (int, error)
	SaveRedemption(ctx context.Context, redemption *Redemption) error
	DeleteRedemptionByOrder(ctx context.Context, orderID uuid.UUID) error
}
