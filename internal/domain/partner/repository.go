package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// SellerRepository defines the interface for seller persistence.
// FindAll understands the "status" filter key.
type SellerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Seller, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Seller, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, seller *Seller) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ShopRepository defines the interface for shop persistence.
// FindAll understands the "status" and "seller_id" filter keys.
type ShopRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Shop, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, shop *Shop) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CustomerRepository defines the interface for customer persistence.
// FindAll understands the "status" filter key.
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}
