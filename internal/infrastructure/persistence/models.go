package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/marketing"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/promotion"
	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/trade"
)

// Models lists every persisted type in dependency order
func Models() []any {
	return []any{
		&identity.User{},
		&catalog.Category{},
		&partner.Seller{},
		&partner.Shop{},
		&partner.Customer{},
		&catalog.Product{},
		&review.Review{},
		&promotion.Promotion{},
		&promotion.Redemption{},
		&trade.Order{},
		&trade.OrderItem{},
		&orderSequence{},
		&marketing.Subscriber{},
	}
}

// AutoMigrate creates or updates the schema from the entity definitions.
// Production schemas are managed by the SQL migrations; this serves
// development databases and tests.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(Models()...)
}
