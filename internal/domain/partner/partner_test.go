package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeller(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		s, err := NewSeller("Acme", "Sales@Acme.io")
		require.NoError(t, err)
		assert.Equal(t, SellerStatusPending, s.Status)
		assert.Equal(t, "sales@acme.io", s.Email)
		assert.Equal(t, 1, s.GetVersion())
	})

	t.Run("status writes are unguarded", func(t *testing.T) {
		s, err := NewSeller("Acme", "sales@acme.io")
		require.NoError(t, err)
		for _, st := range []SellerStatus{SellerStatusSuspended, SellerStatusPending, SellerStatusApproved, SellerStatusRejected, SellerStatusApproved} {
			require.NoError(t, s.SetStatus(st, ""))
			assert.Equal(t, st, s.Status)
		}
		assert.True(t, s.IsApproved())
		assert.Error(t, s.SetStatus("banned", ""))
	})

	t.Run("validates contact details", func(t *testing.T) {
		_, err := NewSeller("", "sales@acme.io")
		assert.Error(t, err)
		_, err = NewSeller("Acme", "nope")
		assert.Error(t, err)
		s, err := NewSeller("Acme", "sales@acme.io")
		require.NoError(t, err)
		assert.Error(t, s.Update("Acme", "sales@acme.io", "call me", "", ""))
	})
}

func TestShop(t *testing.T) {
	t.Run("derives slug from name", func(t *testing.T) {
		s, err := NewShop(uuid.New(), "Ada's Linen Co.", "")
		require.NoError(t, err)
		assert.Equal(t, "ada-s-linen-co", s.Slug)
		assert.Equal(t, ShopStatusPending, s.Status)
		assert.False(t, s.IsOpen())
	})

	t.Run("keeps an explicit slug", func(t *testing.T) {
		s, err := NewShop(uuid.New(), "Linen", "Best Linen")
		require.NoError(t, err)
		assert.Equal(t, "best-linen", s.Slug)
		require.NoError(t, s.SetStatus(ShopStatusActive))
		assert.True(t, s.IsOpen())
	})

	t.Run("requires seller", func(t *testing.T) {
		_, err := NewShop(uuid.Nil, "Linen", "")
		assert.Error(t, err)
	})
}

func TestCustomer(t *testing.T) {
	c, err := NewCustomer("Ada", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, CustomerStatusActive, c.Status)

	c.RecordOrder(decimal.NewFromInt(40))
	c.RecordOrder(decimal.RequireFromString("2.50"))
	assert.Equal(t, 2, c.OrderCount)
	assert.True(t, c.TotalSpent.Equal(decimal.RequireFromString("42.5")))

	require.NoError(t, c.SetStatus(CustomerStatusBlocked))
	assert.True(t, c.IsBlocked())

	assert.Error(t, c.SetDefaultAddress(shared.Address{FullName: "Ada"}))
	userID := uuid.New()
	c.LinkUser(userID)
	assert.Equal(t, &userID, c.UserID)
}
