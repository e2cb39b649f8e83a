package shopclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrProductUnavailable is returned by Load when neither the API nor the
// static catalog has the product
var ErrProductUnavailable = errors.New("shopclient: product unavailable")

// User-visible messages of the error state
const (
	MessageProductNotFound = "This product could not be found."
	MessageLoadFailed      = "We couldn't load this product right now. Please try again later."
)

// Where a loaded product came from
const (
	SourceAPI    = "api"
	SourceStatic = "static"
)

// ProductSource fetches the product page payload
type ProductSource interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetail, error)
}

// Fallback resolves products locally when the API cannot
type Fallback interface {
	Lookup(id uuid.UUID) (*Product, bool)
}

// RecentlyViewedRecorder remembers opened products
type RecentlyViewedRecorder interface {
	PushRecentlyViewed(id uuid.UUID) error
}

// ProductPage owns the state of the product detail view: the loaded
// product, the shopper's selections and the values derived from them
type ProductPage struct {
	api      ProductSource
	fallback Fallback
	recent   RecentlyViewedRecorder
	logger   *zap.Logger

	product        *Product
	boughtTogether []Product
	origin         string
	errMessage     string

	quantity      int
	selectedColor string
	selectedSize  string
	selectedImage string
	checked       map[uuid.UUID]bool
}

// NewProductPage builds a page controller. fallback and recent may be nil.
func NewProductPage(source ProductSource, fallback Fallback, recent RecentlyViewedRecorder, logger *zap.Logger) *ProductPage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductPage{
		api:      source,
		fallback: fallback,
		recent:   recent,
		logger:   logger,
		checked:  make(map[uuid.UUID]bool),
	}
}

// Load fetches product id, falling back to the static catalog when the API
// is unreachable, answers 5xx or the breaker is open. Client errors such as
// 404 are not masked. On failure the page enters the error state and Load
// returns ErrProductUnavailable.
func (p *ProductPage) Load(ctx context.Context, id uuid.UUID) error {
	p.reset()

	detail, err := p.api.GetProduct(ctx, id)
	if err == nil {
		p.product = &detail.Product
		p.boughtTogether = detail.BoughtTogether
		p.origin = SourceAPI
	} else {
		// only an unreachable API may be papered over with the static copy
		var local *Product
		ok := false
		if Unavailable(err) {
			local, ok = p.lookupFallback(id)
		}
		if !ok {
			p.errMessage = MessageLoadFailed
			if StatusOf(err) == http.StatusNotFound {
				p.errMessage = MessageProductNotFound
			}
			p.logger.Warn("Product load failed", zap.Stringer("product_id", id), zap.Error(err))
			return fmt.Errorf("%w: %v", ErrProductUnavailable, err)
		}
		p.logger.Info("Serving product from static catalog", zap.Stringer("product_id", id), zap.Error(err))
		p.product = local
		p.origin = SourceStatic
	}

	p.initSelection()
	if p.recent != nil {
		if err := p.recent.PushRecentlyViewed(id); err != nil {
			p.logger.Warn("Failed to record recently viewed product", zap.Error(err))
		}
	}
	return nil
}

func (p *ProductPage) lookupFallback(id uuid.UUID) (*Product, bool) {
	if p.fallback == nil {
		return nil, false
	}
	return p.fallback.Lookup(id)
}

func (p *ProductPage) reset() {
	p.product = nil
	p.boughtTogether = nil
	p.origin = ""
	p.errMessage = ""
	p.quantity = 0
	p.selectedColor = ""
	p.selectedSize = ""
	p.selectedImage = ""
	clear(p.checked)
}

func (p *ProductPage) initSelection() {
	p.quantity = 1
	if len(p.product.Colors) > 0 {
		p.selectedColor = p.product.Colors[0].Name
	}
	if len(p.product.Sizes) > 0 {
		p.selectedSize = p.product.Sizes[0]
	}
	p.selectedImage = p.imageFor(p.selectedColor)
	p.checked[p.product.ID] = true
	for _, bt := range p.boughtTogether {
		if bt.ID != p.product.ID {
			p.checked[bt.ID] = false
		}
	}
}

func (p *ProductPage) imageFor(color string) string {
	for _, c := range p.product.Colors {
		if c.Name == color && c.Image != "" {
			return c.Image
		}
	}
	return p.product.Image
}

// Product is the loaded product, nil before a successful Load
func (p *ProductPage) Product() *Product { return p.product }

// BoughtTogether are the products offered alongside
func (p *ProductPage) BoughtTogether() []Product { return p.boughtTogether }

// Source reports whether the product came from the API or the static catalog
func (p *ProductPage) Source() string { return p.origin }

// ErrorMessage is the user-visible message of the error state
func (p *ProductPage) ErrorMessage() string { return p.errMessage }

// Quantity is the selected quantity
func (p *ProductPage) Quantity() int { return p.quantity }

// SelectedColor is the selected color name
func (p *ProductPage) SelectedColor() string { return p.selectedColor }

// SelectedSize is the selected size
func (p *ProductPage) SelectedSize() string { return p.selectedSize }

// SelectedImage is the image on display
func (p *ProductPage) SelectedImage() string { return p.selectedImage }

func (p *ProductPage) maxQuantity() int {
	if p.product == nil || p.product.Stock < 1 {
		return 1
	}
	return p.product.Stock
}

// SetQuantity sets the quantity clamped to [1, stock]
func (p *ProductPage) SetQuantity(n int) int {
	p.quantity = min(max(n, 1), p.maxQuantity())
	return p.quantity
}

// IncreaseQuantity adds one, stopping at stock
func (p *ProductPage) IncreaseQuantity() int {
	return p.SetQuantity(p.quantity + 1)
}

// DecreaseQuantity removes one, stopping at 1
func (p *ProductPage) DecreaseQuantity() int {
	return p.SetQuantity(p.quantity - 1)
}

// SelectColor switches color and shows that color's image, or the primary
// image when the color has none
func (p *ProductPage) SelectColor(name string) error {
	if p.product == nil {
		return ErrProductUnavailable
	}
	if !slices.ContainsFunc(p.product.Colors, func(c ColorOption) bool { return c.Name == name }) {
		return fmt.Errorf("unknown color %q", name)
	}
	p.selectedColor = name
	p.selectedImage = p.imageFor(name)
	return nil
}

// SelectSize switches size
func (p *ProductPage) SelectSize(size string) error {
	if p.product == nil {
		return ErrProductUnavailable
	}
	if !slices.Contains(p.product.Sizes, size) {
		return fmt.Errorf("unknown size %q", size)
	}
	p.selectedSize = size
	return nil
}

// SelectImage shows a gallery image
func (p *ProductPage) SelectImage(image string) {
	p.selectedImage = image
}

// ToggleBoughtTogether flips the checkbox of item id
func (p *ProductPage) ToggleBoughtTogether(id uuid.UUID) {
	if _, ok := p.checked[id]; ok {
		p.checked[id] = !p.checked[id]
	}
}

// IsChecked reports whether item id is part of the bundle
func (p *ProductPage) IsChecked(id uuid.UUID) bool {
	return p.checked[id]
}

// Discount is the sale percentage of the loaded product
func (p *ProductPage) Discount() int {
	if p.product == nil {
		return 0
	}
	return p.product.Discount()
}

// TotalBoughtTogetherPrice sums the checked items, formatted to two decimals
func (p *ProductPage) TotalBoughtTogetherPrice() string {
	total := decimal.Zero
	if p.product == nil {
		return total.StringFixed(2)
	}
	if p.checked[p.product.ID] {
		total = total.Add(p.product.EffectivePrice())
	}
	for i := range p.boughtTogether {
		item := &p.boughtTogether[i]
		if item.ID != p.product.ID && p.checked[item.ID] {
			total = total.Add(item.EffectivePrice())
		}
	}
	return total.StringFixed(2)
}
