package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence.
// FindAll understands the "status", "customer_id" and "payment_status" filter keys.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindByPaymentReference(ctx context.Context, reference string) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context) (map[OrderStatus]int64, error)
	Save(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	// NextOrderNumber allocates a unique, human-readable order number
	NextOrderNumber(ctx context.Context, at time.Time) (string, error)
}
