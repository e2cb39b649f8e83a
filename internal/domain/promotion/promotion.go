package promotion

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Type is how a promotion computes its discount
type Type string

const (
	TypePercentage   Type = "percentage"
	TypeFixedAmount  Type = "fixed_amount"
	TypeFreeShipping Type = "free_shipping"
	TypeBuyXGetY     Type = "buy_x_get_y"
)

// IsValid reports whether t is a known promotion type
func (t Type) IsValid() bool {
	switch t {
	case TypePercentage, TypeFixedAmount, TypeFreeShipping, TypeBuyXGetY:
		return true
	}
	return false
}

// Applicability selects which cart lines a promotion covers
type Applicability string

const (
	ApplyToAll        Applicability = "all"
	ApplyToProducts   Applicability = "products"
	ApplyToCategories Applicability = "categories"
)

// IsValid reports whether a is a known applicability scope
func (a Applicability) IsValid() bool {
	return a == ApplyToAll || a == ApplyToProducts || a == ApplyToCategories
}

// Status is derived from the active flag, the window and usage
type Status string

const (
	StatusActive    Status = "active"
	StatusScheduled Status = "scheduled"
	StatusExpired   Status = "expired"
	StatusInactive  Status = "inactive"
	StatusExhausted Status = "exhausted"
)

// IsValid reports whether s is a known derived status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusScheduled, StatusExpired, StatusInactive, StatusExhausted:
		return true
	}
	return false
}

var codePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

// Promotion is a discount rule redeemable by code at checkout
type Promotion struct {
	shared.BaseAggregateRoot
	Code               string           `gorm:"type:varchar(32);not null;uniqueIndex"`
	Name               string           `gorm:"type:varchar(100);not null"`
	Description        string           `gorm:"type:text"`
	Type               Type             `gorm:"type:varchar(20);not null"`
	Value              decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	BuyQuantity        int              `gorm:"not null;default:0"`
	GetQuantity        int              `gorm:"not null;default:0"`
	Applicability      Applicability    `gorm:"type:varchar(20);not null;default:'all'"`
	ProductIDs         []uuid.UUID      `gorm:"serializer:json;type:jsonb"`
	CategoryIDs        []uuid.UUID      `gorm:"serializer:json;type:jsonb"`
	ExcludedProductIDs []uuid.UUID      `gorm:"serializer:json;type:jsonb"`
	MinOrderAmount     decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	MaxDiscount        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	UsageLimit         int              `gorm:"not null;default:0"` // 0 means unlimited
	PerCustomerLimit   int              `gorm:"not null;default:0"` // 0 means unlimited
	UsedCount          int              `gorm:"not null;default:0"`
	StartsAt           *time.Time
	EndsAt             *time.Time
	Active             bool `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Promotion) TableName() string {
	return "promotions"
}

// Rule carries every editable field of a promotion
type Rule struct {
	Name               string
	Description        string
	Type               Type
	Value              decimal.Decimal
	BuyQuantity        int
	GetQuantity        int
	Applicability      Applicability
	ProductIDs         []uuid.UUID
	CategoryIDs        []uuid.UUID
	ExcludedProductIDs []uuid.UUID
	MinOrderAmount     decimal.Decimal
	MaxDiscount        *decimal.Decimal
	UsageLimit         int
	PerCustomerLimit   int
	StartsAt           *time.Time
	EndsAt             *time.Time
	Active             bool
}

// New creates a promotion after validating the rule for its type
func New(code string, rule Rule) (*Promotion, error) {
	code = NormalizeCode(code)
	if !codePattern.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Code must be 3-32 letters, digits, dashes or underscores")
	}
	p := &Promotion{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
	}
	if err := p.apply(rule); err != nil {
		return nil, err
	}
	p.AddDomainEvent(NewPromotionCreatedEvent(p))
	return p, nil
}

// Update replaces the rule; the code and usage count are kept
func (p *Promotion) Update(rule Rule) error {
	if err := p.apply(rule); err != nil {
		return err
	}
	p.IncrementVersion()
	return nil
}

func (p *Promotion) apply(r Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Applicability == "" {
		r.Applicability = ApplyToAll
	}
	p.Name = strings.TrimSpace(r.Name)
	p.Description = r.Description
	p.Type = r.Type
	p.Value = r.Value
	p.BuyQuantity = r.BuyQuantity
	p.GetQuantity = r.GetQuantity
	p.Applicability = r.Applicability
	p.ProductIDs = nonNil(r.ProductIDs)
	p.CategoryIDs = nonNil(r.CategoryIDs)
	p.ExcludedProductIDs = nonNil(r.ExcludedProductIDs)
	p.MinOrderAmount = r.MinOrderAmount
	p.MaxDiscount = r.MaxDiscount
	p.UsageLimit = r.UsageLimit
	p.PerCustomerLimit = r.PerCustomerLimit
	p.StartsAt = r.StartsAt
	p.EndsAt = r.EndsAt
	p.Active = r.Active
	if p.Type == TypeFreeShipping {
		p.Value = decimal.Zero
	}
	if p.Type != TypeBuyXGetY {
		p.BuyQuantity, p.GetQuantity = 0, 0
	}
	return nil
}

// Validate enforces the per-type value ranges and cross-field rules
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Promotion name cannot be empty")
	}
	if !r.Type.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Unknown promotion type: "+string(r.Type))
	}
	switch r.Type {
	case TypePercentage:
		if !r.Value.IsPositive() || r.Value.GreaterThan(decimal.NewFromInt(100)) {
			return shared.NewDomainError("INVALID_VALUE", "Percentage must be greater than 0 and at most 100")
		}
	case TypeFixedAmount:
		if !r.Value.IsPositive() {
			return shared.NewDomainError("INVALID_VALUE", "Fixed amount must be greater than 0")
		}
	case TypeBuyXGetY:
		if r.BuyQuantity < 1 || r.GetQuantity < 1 {
			return shared.NewDomainError("INVALID_VALUE", "Buy and get quantities must be at least 1")
		}
	}
	if r.Applicability != "" && !r.Applicability.IsValid() {
		return shared.NewDomainError("INVALID_APPLICABILITY", "Unknown applicability: "+string(r.Applicability))
	}
	if r.Applicability == ApplyToProducts && len(r.ProductIDs) == 0 {
		return shared.NewDomainError("INVALID_APPLICABILITY", "At least one product is required")
	}
	if r.Applicability == ApplyToCategories && len(r.CategoryIDs) == 0 {
		return shared.NewDomainError("INVALID_APPLICABILITY", "At least one category is required")
	}
	if r.MinOrderAmount.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_ORDER", "Minimum order amount cannot be negative")
	}
	if r.MaxDiscount != nil && !r.MaxDiscount.IsPositive() {
		return shared.NewDomainError("INVALID_MAX_DISCOUNT", "Maximum discount must be greater than 0")
	}
	if r.UsageLimit < 0 || r.PerCustomerLimit < 0 {
		return shared.NewDomainError("INVALID_USAGE_LIMIT", "Usage limits cannot be negative")
	}
	if r.StartsAt != nil && r.EndsAt != nil && !r.EndsAt.After(*r.StartsAt) {
		return shared.NewDomainError("INVALID_WINDOW", "End date must be after start date")
	}
	return nil
}

// SetActive toggles the active flag
func (p *Promotion) SetActive(active bool) {
	p.Active = active
	p.IncrementVersion()
}

// RecordUsage counts one redemption
func (p *Promotion) RecordUsage() error {
	if p.UsageLimit > 0 && p.UsedCount >= p.UsageLimit {
		return ErrUsageLimitReached
	}
	p.UsedCount++
	p.IncrementVersion()
	return nil
}

// ReleaseUsage undoes one redemption, e.g. when an order is cancelled
func (p *Promotion) ReleaseUsage() {
	if p.UsedCount > 0 {
		p.UsedCount--
		p.IncrementVersion()
	}
}

// StatusAt derives the listing status at the given instant
func (p *Promotion) StatusAt(now time.Time) Status {
	switch {
	case !p.Active:
		return StatusInactive
	case p.EndsAt != nil && !now.Before(*p.EndsAt):
		return StatusExpired
	case p.StartsAt != nil && now.Before(*p.StartsAt):
		return StatusScheduled
	case p.UsageLimit > 0 && p.UsedCount >= p.UsageLimit:
		return StatusExhausted
	}
	return StatusActive
}

// NormalizeCode trims and upper-cases a promotion code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
