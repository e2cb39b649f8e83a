package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	t.Run("title cases the name and derives a slug", func(t *testing.T) {
		c, err := NewCategory("  home   and garden ")
		require.NoError(t, err)
		assert.Equal(t, "Home And Garden", c.Name)
		assert.Equal(t, "home-and-garden", c.Slug)
	})

	t.Run("rejects names without letters or digits", func(t *testing.T) {
		_, err := NewCategory("---")
		assert.Error(t, err)
		_, err = NewCategory("   ")
		assert.Error(t, err)
	})
}

func TestCategory_Update(t *testing.T) {
	c, err := NewCategory("shoes")
	require.NoError(t, err)

	require.NoError(t, c.Update("running shoes", "For runners", " run.jpg "))
	assert.Equal(t, "Running Shoes", c.Name)
	assert.Equal(t, "running-shoes", c.Slug)
	assert.Equal(t, "run.jpg", c.Image)
	assert.Equal(t, 2, c.GetVersion())
}
