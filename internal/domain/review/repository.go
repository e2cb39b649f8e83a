package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// Repository defines the interface for review persistence.
// FindAll understands the "status", "product_id" and "author_id" filter keys.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Review, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// RatingCounts returns approved review counts per star for a product
	RatingCounts(ctx context.Context, productID uuid.UUID) (map[int]int, error)
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}
