package shopclient

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ColorOption is a selectable color, optionally with its own image
type ColorOption struct {
	Name  string `json:"name"`
	Hex   string `json:"hex"`
	Image string `json:"image,omitempty"`
}

// Specification is one row of the product specification table
type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Product is a storefront product as served by the API
type Product struct {
	ID                uuid.UUID        `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	CategoryID        *uuid.UUID       `json:"category_id,omitempty"`
	Price             decimal.Decimal  `json:"price"`
	SalePrice         *decimal.Decimal `json:"sale_price,omitempty"`
	Image             string           `json:"image"`
	Thumbnails        []string         `json:"thumbnails"`
	Stock             int              `json:"stock"`
	Colors            []ColorOption    `json:"colors"`
	Sizes             []string         `json:"sizes"`
	Specifications    []Specification  `json:"specifications"`
	RelatedProductIDs []uuid.UUID      `json:"related_product_ids"`
}

// EffectivePrice is the sale price when one applies, else the list price
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.IsPositive() {
		return *p.SalePrice
	}
	return p.Price
}

// Discount is the rounded percentage the sale price takes off the list
// price. It is 0 unless both prices are positive.
func (p *Product) Discount() int {
	return Discount(p.Price, p.SalePrice)
}

// Discount computes round((price - sale) / price * 100), or 0 when either
// price is missing or not positive
func Discount(price decimal.Decimal, sale *decimal.Decimal) int {
	if sale == nil || !price.IsPositive() || !sale.IsPositive() {
		return 0
	}
	pct := price.Sub(*sale).Div(price).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

// ProductDetail is the product page payload
type ProductDetail struct {
	Product        Product   `json:"product"`
	BoughtTogether []Product `json:"bought_together"`
}

// Recommendation is a product list tagged with the query that produced it
type Recommendation struct {
	Products []Product `json:"products"`
	Source   string    `json:"source"`
	Message  string    `json:"message,omitempty"`
}

// Review is a submitted review as acknowledged by the API
type Review struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenPair is what login and refresh return
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// User is the signed-in account
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
}
