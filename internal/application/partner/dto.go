package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ListFilter is the paginated, status-filtered listing used by every panel
type ListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f ListFilter) toFilter() shared.Filter {
	out := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalized()
	if f.Status != "" {
		out.Filters[filterStatus] = f.Status
	}
	return out
}

// ShopListFilter adds the owning seller to ListFilter
type ShopListFilter struct {
	ListFilter
	SellerID string `form:"seller_id" binding:"omitempty,uuid"`
}

// SetStatusRequest writes a status flag
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"max=500"`
}

// CreateSellerRequest represents a request to register a seller
type CreateSellerRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"max=50"`
	CompanyName string `json:"company_name" binding:"max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// UpdateSellerRequest replaces a seller's contact details
type UpdateSellerRequest = CreateSellerRequest

// SellerResponse represents a seller in API responses
type SellerResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	StatusNote  string    `json:"status_note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToSellerResponse converts a seller to its response
func ToSellerResponse(s *partner.Seller) SellerResponse {
	return SellerResponse{
		ID:          s.ID,
		Name:        s.Name,
		Email:       s.Email,
		Phone:       s.Phone,
		CompanyName: s.CompanyName,
		Description: s.Description,
		Status:      string(s.Status),
		StatusNote:  s.StatusNote,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// CreateShopRequest represents a request to open a shop
type CreateShopRequest struct {
	SellerID    uuid.UUID `json:"seller_id" binding:"required"`
	Name        string    `json:"name" binding:"required,max=100"`
	Slug        string    `json:"slug" binding:"max=120"`
	Description string    `json:"description" binding:"max=2000"`
	Logo        string    `json:"logo" binding:"omitempty,url,max=500"`
}

// UpdateShopRequest replaces a shop's descriptive fields
type UpdateShopRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"max=120"`
	Description string `json:"description" binding:"max=2000"`
	Logo        string `json:"logo" binding:"omitempty,url,max=500"`
}

// ShopResponse represents a shop in API responses
type ShopResponse struct {
	ID          uuid.UUID `json:"id"`
	SellerID    uuid.UUID `json:"seller_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Logo        string    `json:"logo,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToShopResponse converts a shop to its response
func ToShopResponse(s *partner.Shop) ShopResponse {
	return ShopResponse{
		ID:          s.ID,
		SellerID:    s.SellerID,
		Name:        s.Name,
		Slug:        s.Slug,
		Description: s.Description,
		Logo:        s.Logo,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// UpdateCustomerRequest replaces a customer's contact details
type UpdateCustomerRequest struct {
	Name           string          `json:"name" binding:"required,max=100"`
	Email          string          `json:"email" binding:"required,email"`
	Phone          string          `json:"phone" binding:"max=50"`
	Notes          string          `json:"notes" binding:"max=2000"`
	DefaultAddress *shared.Address `json:"default_address"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID             uuid.UUID       `json:"id"`
	UserID         *uuid.UUID      `json:"user_id,omitempty"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone,omitempty"`
	DefaultAddress shared.Address  `json:"default_address"`
	Status         string          `json:"status"`
	OrderCount     int             `json:"order_count"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToCustomerResponse converts a customer to its response
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             c.ID,
		UserID:         c.UserID,
		Name:           c.Name,
		Email:          c.Email,
		Phone:          c.Phone,
		DefaultAddress: c.DefaultAddress,
		Status:         string(c.Status),
		OrderCount:     c.OrderCount,
		TotalSpent:     c.TotalSpent,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
