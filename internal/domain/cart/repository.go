package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores one cart per owner
type Repository interface {
	// Get returns the owner's cart, or an empty one if none is stored
	Get(ctx context.Context, ownerID uuid.UUID) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, ownerID uuid.UUID) error
}
