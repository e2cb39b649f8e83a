package storefront

import (
	"testing"

	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(t *testing.T, price string, sale string, stock int) catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Linen Shirt", decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	if sale != "" {
		s := decimal.RequireFromString(sale)
		require.NoError(t, p.SetPricing(p.Price, &s))
	}
	p.Image = "main.jpg"
	return *p
}

func TestDetailView_FirstColorSelected(t *testing.T) {
	p := product(t, "100", "", 5)
	require.NoError(t, p.SetVariants([]catalog.ColorOption{
		{Name: "Red", Hex: "#f00", Image: "red.jpg"},
		{Name: "Blue", Hex: "#00f"},
	}, []string{"S", "M"}))

	v := NewDetailView(p, nil)
	assert.Equal(t, "Red", v.SelectedColor)
	assert.Equal(t, "red.jpg", v.SelectedImage)
}

func TestDetailView_NoColorsUsesPrimaryImage(t *testing.T) {
	v := NewDetailView(product(t, "100", "", 5), nil)
	assert.Equal(t, "", v.SelectedColor)
	assert.Equal(t, "main.jpg", v.SelectedImage)
}

func TestDetailView_BoughtTogether(t *testing.T) {
	main := product(t, "100", "75", 5)
	belt := product(t, "20", "", 5)
	socks := product(t, "9.99", "", 5)

	v := NewDetailView(main, []catalog.Product{belt, socks, main})
	require.Len(t, v.BoughtTogether, 2, "main product is not repeated")
	assert.Equal(t, belt.ID, v.BoughtTogether[0].ID)
	assert.Equal(t, "75.00", v.BundleTotalPrice())
}

func TestGallery(t *testing.T) {
	p := product(t, "10", "", 1)
	p.SetMedia("main.jpg", []string{"a.jpg", "main.jpg", "b.jpg"})
	assert.Equal(t, []string{"main.jpg", "a.jpg", "b.jpg"}, Gallery(p))

	p.SetMedia("", nil)
	assert.Empty(t, Gallery(p))
}
