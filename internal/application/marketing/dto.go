package marketing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/marketing"
	"github.com/shopspring/decimal"
)

// SubscribeRequest adds an address to the newsletter
type SubscribeRequest struct {
	Email  string `json:"email" binding:"required,email,max=255"`
	Source string `json:"source" binding:"max=50"`
}

// UnsubscribeRequest withdraws consent by email or by the token sent in
// every newsletter
type UnsubscribeRequest struct {
	Email string     `json:"email" binding:"omitempty,email"`
	Token *uuid.UUID `json:"token"`
}

// SubscriptionResponse reports the resulting subscription state
type SubscriptionResponse struct {
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Changed   bool      `json:"changed"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toSubscriptionResponse(s *marketing.Subscriber, changed bool) *SubscriptionResponse {
	return &SubscriptionResponse{
		Email:     s.Email,
		Status:    string(s.Status),
		Changed:   changed,
		UpdatedAt: s.UpdatedAt,
	}
}

// StoreProfile is the public description of the store
type StoreProfile struct {
	Name        string            `json:"name"`
	Tagline     string            `json:"tagline,omitempty"`
	Description string            `json:"description,omitempty"`
	Email       string            `json:"email,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Address     string            `json:"address,omitempty"`
	Social      map[string]string `json:"social,omitempty"`
}

// ShippingInfo is what the about page tells shoppers about delivery
type ShippingInfo struct {
	FlatFee          decimal.Decimal `json:"flat_fee"`
	FreeShippingOver decimal.Decimal `json:"free_shipping_over"`
	Countries        []string        `json:"countries,omitempty"`
}

// AboutResponse is served by the about page
type AboutResponse struct {
	Store       StoreProfile `json:"store"`
	Shipping    ShippingInfo `json:"shipping"`
	Subscribers int64        `json:"subscribers"`
}
