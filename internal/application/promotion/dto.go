package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/promotion"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RuleDTO carries the editable fields shared by create and update
type RuleDTO struct {
	Name               string           `json:"name" binding:"required,max=100"`
	Description        string           `json:"description" binding:"max=2000"`
	Type               string           `json:"type" binding:"required,oneof=percentage fixed_amount free_shipping buy_x_get_y"`
	Value              decimal.Decimal  `json:"value"`
	BuyQuantity        int              `json:"buy_quantity" binding:"min=0"`
	GetQuantity        int              `json:"get_quantity" binding:"min=0"`
	Applicability      string           `json:"applicability" binding:"omitempty,oneof=all products categories"`
	ProductIDs         []uuid.UUID      `json:"product_ids"`
	CategoryIDs        []uuid.UUID      `json:"category_ids"`
	ExcludedProductIDs []uuid.UUID      `json:"excluded_product_ids"`
	MinOrderAmount     decimal.Decimal  `json:"min_order_amount"`
	MaxDiscount        *decimal.Decimal `json:"max_discount"`
	UsageLimit         int              `json:"usage_limit" binding:"min=0"`
	PerCustomerLimit   int              `json:"per_customer_limit" binding:"min=0"`
	StartsAt           *time.Time       `json:"starts_at"`
	EndsAt             *time.Time       `json:"ends_at"`
	Active             bool             `json:"active"`
}

func (r RuleDTO) toDomain() promotion.Rule {
	return promotion.Rule{
		Name:               r.Name,
		Description:        r.Description,
		Type:               promotion.Type(r.Type),
		Value:              r.Value,
		BuyQuantity:        r.BuyQuantity,
		GetQuantity:        r.GetQuantity,
		Applicability:      promotion.Applicability(r.Applicability),
		ProductIDs:         r.ProductIDs,
		CategoryIDs:        r.CategoryIDs,
		ExcludedProductIDs: r.ExcludedProductIDs,
		MinOrderAmount:     r.MinOrderAmount,
		MaxDiscount:        r.MaxDiscount,
		UsageLimit:         r.UsageLimit,
		PerCustomerLimit:   r.PerCustomerLimit,
		StartsAt:           r.StartsAt,
		EndsAt:             r.EndsAt,
		Active:             r.Active,
	}
}

// CreatePromotionRequest represents a request to create a promotion
type CreatePromotionRequest struct {
	Code string `json:"code" binding:"required,min=3,max=32"`
	RuleDTO
}

// UpdatePromotionRequest replaces the rule of a promotion
type UpdatePromotionRequest struct {
	RuleDTO
}

// SetActiveRequest toggles a promotion on or off
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// PreviewRequest asks what a code would take off the caller's cart
type PreviewRequest struct {
	Code string `json:"code" binding:"required,max=32"`
}

// PromotionListFilter represents filter options for the admin listing
type PromotionListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active scheduled expired inactive exhausted"`
	Type     string `form:"type" binding:"omitempty,oneof=percentage fixed_amount free_shipping buy_x_get_y"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f PromotionListFilter) toFilter() shared.Filter {
	out := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalized()
	if f.Status != "" {
		out.Filters[filterStatus] = promotion.Status(f.Status)
	}
	if f.Type != "" {
		out.Filters[filterType] = promotion.Type(f.Type)
	}
	return out
}

// PromotionResponse represents a promotion in API responses
type PromotionResponse struct {
	ID                 uuid.UUID        `json:"id"`
	Code               string           `json:"code"`
	Name               string           `json:"name"`
	Description        string           `json:"description,omitempty"`
	Type               string           `json:"type"`
	Value              decimal.Decimal  `json:"value"`
	BuyQuantity        int              `json:"buy_quantity,omitempty"`
	GetQuantity        int              `json:"get_quantity,omitempty"`
	Applicability      string           `json:"applicability"`
	ProductIDs         []uuid.UUID      `json:"product_ids"`
	CategoryIDs        []uuid.UUID      `json:"category_ids"`
	ExcludedProductIDs []uuid.UUID      `json:"excluded_product_ids"`
	MinOrderAmount     decimal.Decimal  `json:"min_order_amount"`
	MaxDiscount        *decimal.Decimal `json:"max_discount,omitempty"`
	UsageLimit         int              `json:"usage_limit"`
	PerCustomerLimit   int              `json:"per_customer_limit"`
	UsedCount          int              `json:"used_count"`
	StartsAt           *time.Time       `json:"starts_at,omitempty"`
	EndsAt             *time.Time       `json:"ends_at,omitempty"`
	Active             bool             `json:"active"`
	Status             string           `json:"status"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	Version            int              `json:"version"`
}

// ToPromotionResponse converts a promotion, deriving its status at now
func ToPromotionResponse(p *promotion.Promotion, now time.Time) PromotionResponse {
	return PromotionResponse{
		ID:                 p.ID,
		Code:               p.Code,
		Name:               p.Name,
		Description:        p.Description,
		Type:               string(p.Type),
		Value:              p.Value,
		BuyQuantity:        p.BuyQuantity,
		GetQuantity:        p.GetQuantity,
		Applicability:      string(p.Applicability),
		ProductIDs:         p.ProductIDs,
		CategoryIDs:        p.CategoryIDs,
		ExcludedProductIDs: p.ExcludedProductIDs,
		MinOrderAmount:     p.MinOrderAmount,
		MaxDiscount:        p.MaxDiscount,
		UsageLimit:         p.UsageLimit,
		PerCustomerLimit:   p.PerCustomerLimit,
		UsedCount:          p.UsedCount,
		StartsAt:           p.StartsAt,
		EndsAt:             p.EndsAt,
		Active:             p.Active,
		Status:             string(p.StatusAt(now)),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
		Version:            p.Version,
	}
}

// PreviewResponse is the discount a code would give on the current cart
type PreviewResponse struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	EligibleTotal  decimal.Decimal `json:"eligible_total"`
	Discount       decimal.Decimal `json:"discount"`
	ShippingWaived bool            `json:"shipping_waived"`
}
