package storefront

import (
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// DetailView is what a product detail payload derives from the product and
// its related products: the default selection, the bought-together panel
// and the opening bundle total. Selection changes after that belong to the
// client.
type DetailView struct {
	// BoughtTogether holds the offered items other than the main product
	BoughtTogether []catalog.Product
	SelectedColor  string
	SelectedImage  string
	Gallery        []string
	// BundleTotal covers only the main product, the one item checked at first
	BundleTotal decimal.Decimal
}

// NewDetailView selects the first color and its image and drops the main
// product from the offered items
func NewDetailView(product catalog.Product, related []catalog.Product) DetailView {
	v := DetailView{
		Gallery:     Gallery(product),
		BundleTotal: product.EffectivePrice(),
	}
	for _, p := range related {
		if p.ID != product.ID {
			v.BoughtTogether = append(v.BoughtTogether, p)
		}
	}
	if len(product.Colors) > 0 {
		v.SelectedColor = product.Colors[0].Name
	}
	v.SelectedImage = product.ImageForColor(v.SelectedColor)
	return v
}

// BundleTotalPrice formats the bundle total with two decimals
func (v DetailView) BundleTotalPrice() string {
	return v.BundleTotal.StringFixed(2)
}

// Gallery lists the primary image followed by the thumbnails, without duplicates
func Gallery(product catalog.Product) []string {
	out := make([]string, 0, len(product.Thumbnails)+1)
	seen := make(map[string]struct{})
	for _, u := range append([]string{product.Image}, product.Thumbnails...) {
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
