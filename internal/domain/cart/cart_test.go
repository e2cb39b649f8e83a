package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(t *testing.T, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Linen Shirt", decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	return p
}

func TestCart_AddItem(t *testing.T) {
	t.Run("adds a line priced at the effective price", func(t *testing.T) {
		p := newProduct(t, "100", 5)
		sale := decimal.NewFromInt(75)
		require.NoError(t, p.SetPricing(p.Price, &sale))

		c := New(uuid.New())
		line, err := c.AddItem(p, 2, "", "")
		require.NoError(t, err)
		assert.True(t, line.UnitPrice.Equal(sale))
		assert.True(t, c.Subtotal().Equal(decimal.NewFromInt(150)))
		assert.Equal(t, 2, c.ItemCount())
	})

	t.Run("merges identical lines", func(t *testing.T) {
		p := newProduct(t, "10", 5)
		c := New(uuid.New())
		_, err := c.AddItem(p, 2, "", "")
		require.NoError(t, err)
		_, err = c.AddItem(p, 3, "", "")
		require.NoError(t, err)
		require.Len(t, c.Items, 1)
		assert.Equal(t, 5, c.Items[0].Quantity)
	})

	t.Run("rejects merged quantity above stock", func(t *testing.T) {
		p := newProduct(t, "10", 5)
		c := New(uuid.New())
		_, err := c.AddItem(p, 4, "", "")
		require.NoError(t, err)
		_, err = c.AddItem(p, 2, "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Only 5 left")
		assert.Equal(t, 4, c.Items[0].Quantity)
	})

	t.Run("keeps variants on separate lines", func(t *testing.T) {
		p := newProduct(t, "10", 5)
		p.Image = "main.jpg"
		require.NoError(t, p.SetVariants([]catalog.ColorOption{{Name: "Red", Image: "red.jpg"}, {Name: "Blue"}}, []string{"S", "M"}))

		c := New(uuid.New())
		red, err := c.AddItem(p, 1, "red", "S")
		require.NoError(t, err)
		assert.Equal(t, "Red", red.Color)
		assert.Equal(t, "red.jpg", red.Image)

		blue, err := c.AddItem(p, 1, "Blue", "S")
		require.NoError(t, err)
		assert.Equal(t, "main.jpg", blue.Image)
		assert.Len(t, c.Items, 2)

		_, err = c.AddItem(p, 1, "Green", "S")
		assert.Error(t, err)
		_, err = c.AddItem(p, 1, "Red", "XL")
		assert.Error(t, err)
	})

	t.Run("rejects inactive product", func(t *testing.T) {
		p := newProduct(t, "10", 5)
		require.NoError(t, p.Deactivate())
		_, err := New(uuid.New()).AddItem(p, 1, "", "")
		assert.Error(t, err)
	})
}

func TestCart_SetQuantity(t *testing.T) {
	p := newProduct(t, "10", 3)
	c := New(uuid.New())
	line, err := c.AddItem(p, 1, "", "")
	require.NoError(t, err)
	id := line.ID

	require.NoError(t, c.SetQuantity(id, 3, p.Stock))
	assert.Error(t, c.SetQuantity(id, 4, p.Stock))
	assert.Error(t, c.SetQuantity(id, 0, p.Stock))
	assert.Error(t, c.SetQuantity(uuid.New(), 1, p.Stock))

	got, ok := c.Line(id)
	require.True(t, ok)
	assert.Equal(t, 3, got.Quantity)
	assert.True(t, got.LineTotal().Equal(decimal.NewFromInt(30)))
}

func TestCart_RemoveAndClear(t *testing.T) {
	p := newProduct(t, "10", 3)
	c := New(uuid.New())
	line, err := c.AddItem(p, 1, "", "")
	require.NoError(t, err)

	require.NoError(t, c.Remove(line.ID))
	assert.True(t, c.IsEmpty())
	assert.Error(t, c.Remove(line.ID))

	_, err = c.AddItem(p, 1, "", "")
	require.NoError(t, err)
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Subtotal().IsZero())
}
