package partner

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// ShopStatus is the activity state of a storefront
type ShopStatus string

const (
	ShopStatusPending   ShopStatus = "pending"
	ShopStatusActive    ShopStatus = "active"
	ShopStatusInactive  ShopStatus = "inactive"
	ShopStatusSuspended ShopStatus = "suspended"
)

// IsValid reports whether s is a known shop status
func (s ShopStatus) IsValid() bool {
	switch s {
	case ShopStatusPending, ShopStatusActive, ShopStatusInactive, ShopStatusSuspended:
		return true
	}
	return false
}

// Shop is a seller's storefront
type Shop struct {
	shared.BaseAggregateRoot
	SellerID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name        string     `gorm:"type:varchar(100);not null"`
	Slug        string     `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description string     `gorm:"type:text"`
	Logo        string     `gorm:"type:varchar(500)"`
	Status      ShopStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
}

// TableName returns the table name for GORM
func (Shop) TableName() string {
	return "shops"
}

// NewShop creates a pending shop for a seller
func NewShop(sellerID uuid.UUID, name, slug string) (*Shop, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller is required")
	}
	s := &Shop{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerID:          sellerID,
		Status:            ShopStatusPending,
	}
	if err := s.Update(name, slug, "", ""); err != nil {
		return nil, err
	}
	s.Version = 1
	return s, nil
}

// Update replaces the descriptive fields; an empty slug is derived from the name
func (s *Shop) Update(name, slug, description, logo string) error {
	name = strings.TrimSpace(name)
	if err := validateName("Shop name", name, 100); err != nil {
		return err
	}
	if slug = shared.Slugify(slug); slug == "" {
		slug = shared.Slugify(name)
	}
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Shop slug must contain letters or digits")
	}
	s.Name = name
	s.Slug = slug
	s.Description = description
	s.Logo = strings.TrimSpace(logo)
	s.IncrementVersion()
	return nil
}

// SetStatus writes any known status
func (s *Shop) SetStatus(status ShopStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown shop status: "+string(status))
	}
	s.Status = status
	s.IncrementVersion()
	return nil
}

// IsOpen reports whether the shop's products can be sold
func (s *Shop) IsOpen() bool {
	return s.Status == ShopStatusActive
}
