package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestNewProduct(t *testing.T) {
	t.Run("creates active product", func(t *testing.T) {
		p, err := NewProduct("  Linen Shirt ", dec("49.90"), 5)
		require.NoError(t, err)

		assert.Equal(t, "Linen Shirt", p.Name)
		assert.True(t, p.Price.Equal(dec("49.90")))
		assert.Equal(t, 5, p.Stock)
		assert.Equal(t, ProductStatusActive, p.Status)
		assert.Nil(t, p.SalePrice)
		assert.NotNil(t, p.Colors)
		assert.Equal(t, 1, p.GetVersion())
	})

	t.Run("publishes ProductCreated event", func(t *testing.T) {
		p, err := NewProduct("Linen Shirt", dec("10"), 1)
		require.NoError(t, err)

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductCreated, events[0].EventType())
		assert.Equal(t, p.ID, events[0].AggregateID())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewProduct("", dec("10"), 1)
		assert.Error(t, err)
		_, err = NewProduct("Shirt", dec("-1"), 1)
		assert.Error(t, err)
		_, err = NewProduct("Shirt", dec("1"), -1)
		assert.Error(t, err)
	})
}

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		name  string
		price decimal.Decimal
		sale  *decimal.Decimal
		want  int
	}{
		{"quarter off", dec("100"), decPtr("75"), 25},
		{"zero price", dec("0"), decPtr("75"), 0},
		{"no sale price", dec("100"), nil, 0},
		{"zero sale price", dec("100"), decPtr("0"), 0},
		{"rounds half up", dec("200"), decPtr("133"), 34},
		{"rounds down", dec("3"), decPtr("2"), 33},
		{"sale above price never negative", dec("50"), decPtr("60"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiscountPercent(tt.price, tt.sale))
		})
	}
}

func TestProduct_SetPricing(t *testing.T) {
	p, err := NewProduct("Shirt", dec("100"), 3)
	require.NoError(t, err)

	t.Run("accepts sale below price", func(t *testing.T) {
		require.NoError(t, p.SetPricing(dec("100"), decPtr("75")))
		assert.Equal(t, 25, p.DiscountPercent())
		assert.True(t, p.EffectivePrice().Equal(dec("75")))
	})

	t.Run("rejects sale at or above price", func(t *testing.T) {
		err := p.SetPricing(dec("100"), decPtr("100"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lower than the price")
	})

	t.Run("clearing sale restores list price", func(t *testing.T) {
		require.NoError(t, p.SetPricing(dec("80"), nil))
		assert.Equal(t, 0, p.DiscountPercent())
		assert.True(t, p.EffectivePrice().Equal(dec("80")))
	})
}

func TestProduct_AdjustStock(t *testing.T) {
	p, err := NewProduct("Shirt", dec("10"), 2)
	require.NoError(t, err)
	p.ClearDomainEvents()

	require.NoError(t, p.AdjustStock(-2))
	assert.Equal(t, 0, p.Stock)
	assert.False(t, p.InStock())

	err = p.AdjustStock(-1)
	require.Error(t, err)
	assert.Equal(t, 0, p.Stock)

	events := p.GetDomainEvents()
	require.Len(t, events, 1)
	ev, ok := events[0].(*ProductStockChangedEvent)
	require.True(t, ok)
	assert.Equal(t, 2, ev.OldStock)
	assert.Equal(t, 0, ev.NewStock)
}

func TestProduct_Variants(t *testing.T) {
	p, err := NewProduct("Shirt", dec("10"), 2)
	require.NoError(t, err)
	p.Image = "primary.jpg"

	require.NoError(t, p.SetVariants([]ColorOption{
		{Name: "Red", Hex: "#f00", Image: "red.jpg"},
		{Name: "Blue", Hex: "#00f"},
	}, []string{"S", " M ", ""}))

	assert.Equal(t, []string{"S", "M"}, p.Sizes)
	assert.True(t, p.HasColor("red"))
	assert.True(t, p.HasSize("m"))
	assert.False(t, p.HasSize("XL"))
	assert.Equal(t, "red.jpg", p.ImageForColor("Red"))
	assert.Equal(t, "primary.jpg", p.ImageForColor("Blue"))
	assert.Equal(t, "primary.jpg", p.ImageForColor("Green"))

	err = p.SetVariants([]ColorOption{{Name: "Red"}, {Name: "red"}}, nil)
	assert.Error(t, err)
}

func TestProduct_SetRelated(t *testing.T) {
	p, err := NewProduct("Shirt", dec("10"), 2)
	require.NoError(t, err)
	other := uuid.New()

	p.SetRelated([]uuid.UUID{p.ID, other, other, uuid.Nil})
	assert.Equal(t, []uuid.UUID{other}, p.RelatedProductIDs)
}

func TestProduct_Status(t *testing.T) {
	p, err := NewProduct("Shirt", dec("10"), 2)
	require.NoError(t, err)

	assert.Error(t, p.Activate())
	require.NoError(t, p.Deactivate())
	assert.False(t, p.IsActive())
	assert.Error(t, p.Deactivate())
	require.NoError(t, p.Activate())
	assert.True(t, p.IsActive())
}
