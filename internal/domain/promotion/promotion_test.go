package promotion

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func percentRule(value string) Rule {
	return Rule{Name: "Spring sale", Type: TypePercentage, Value: d(value), Active: true}
}

func TestNew(t *testing.T) {
	t.Run("normalizes the code", func(t *testing.T) {
		p, err := New(" spring-10 ", percentRule("10"))
		require.NoError(t, err)
		assert.Equal(t, "SPRING-10", p.Code)
		assert.Equal(t, ApplyToAll, p.Applicability)
		assert.NotNil(t, p.ProductIDs)
		require.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("rejects bad codes", func(t *testing.T) {
		_, err := New("x", percentRule("10"))
		assert.Error(t, err)
		_, err = New("HAS SPACE", percentRule("10"))
		assert.Error(t, err)
	})
}

func TestRule_Validate(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Hour)
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{"percentage at 100", percentRule("100"), false},
		{"percentage above 100", percentRule("100.01"), true},
		{"percentage zero", percentRule("0"), true},
		{"fixed amount positive", Rule{Name: "x", Type: TypeFixedAmount, Value: d("5")}, false},
		{"fixed amount zero", Rule{Name: "x", Type: TypeFixedAmount, Value: d("0")}, true},
		{"free shipping ignores value", Rule{Name: "x", Type: TypeFreeShipping}, false},
		{"buy x get y", Rule{Name: "x", Type: TypeBuyXGetY, BuyQuantity: 2, GetQuantity: 1}, false},
		{"buy x get zero", Rule{Name: "x", Type: TypeBuyXGetY, BuyQuantity: 2}, true},
		{"unknown type", Rule{Name: "x", Type: "mystery"}, true},
		{"missing name", Rule{Type: TypeFreeShipping}, true},
		{"products scope without products", Rule{Name: "x", Type: TypeFreeShipping, Applicability: ApplyToProducts}, true},
		{"end before start", Rule{Name: "x", Type: TypeFreeShipping, StartsAt: &later, EndsAt: &now}, true},
		{"negative usage limit", Rule{Name: "x", Type: TypeFreeShipping, UsageLimit: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPromotion_StatusAt(t *testing.T) {
	now := time.Now()
	past, future := now.Add(-time.Hour), now.Add(time.Hour)

	p, err := New("CODE1", percentRule("10"))
	require.NoError(t, err)
	assert.Equal(t, StatusActive, p.StatusAt(now))

	p.StartsAt = &future
	assert.Equal(t, StatusScheduled, p.StatusAt(now))

	p.StartsAt, p.EndsAt = nil, &past
	assert.Equal(t, StatusExpired, p.StatusAt(now))

	p.EndsAt = nil
	p.UsageLimit, p.UsedCount = 1, 1
	assert.Equal(t, StatusExhausted, p.StatusAt(now))

	p.SetActive(false)
	assert.Equal(t, StatusInactive, p.StatusAt(now))
}

func TestPromotion_Apply(t *testing.T) {
	now := time.Now()
	shirt, socks := uuid.New(), uuid.New()
	apparel := uuid.New()
	lines := []Line{
		{ProductID: shirt, CategoryID: &apparel, UnitPrice: d("40"), Quantity: 2},
		{ProductID: socks, UnitPrice: d("5"), Quantity: 4},
	}

	t.Run("percentage of eligible subtotal", func(t *testing.T) {
		p, err := New("TEN", percentRule("10"))
		require.NoError(t, err)
		res, err := p.Apply(lines, now, 0)
		require.NoError(t, err)
		assert.True(t, res.Discount.Equal(d("10")), res.Discount.String())
		assert.ElementsMatch(t, []uuid.UUID{shirt, socks}, res.AppliedProducts)
	})

	t.Run("excluded products are skipped", func(t *testing.T) {
		r := percentRule("50")
		r.ExcludedProductIDs = []uuid.UUID{shirt}
		p, err := New("HALF", r)
		require.NoError(t, err)
		res, err := p.Apply(lines, now, 0)
		require.NoError(t, err)
		assert.True(t, res.Discount.Equal(d("10")))
	})

	t.Run("category scope", func(t *testing.T) {
		r := Rule{Name: "x", Type: TypeFixedAmount, Value: d("100"), Applicability: ApplyToCategories, CategoryIDs: []uuid.UUID{apparel}, Active: true}
		p, err := New("APPAREL", r)
		require.NoError(t, err)
		res, err := p.Apply(lines, now, 0)
		require.NoError(t, err)
		assert.True(t, res.Discount.Equal(d("80")), "fixed amount is capped at eligible total")
	})

	t.Run("free shipping", func(t *testing.T) {
		p, err := New("SHIPFREE", Rule{Name: "x", Type: TypeFreeShipping, Active: true})
		require.NoError(t, err)
		res, err := p.Apply(lines, now, 0)
		require.NoError(t, err)
		assert.True(t, res.ShippingWaived)
		assert.True(t, res.Discount.IsZero())
	})

	t.Run("buy two get one frees the cheapest units", func(t *testing.T) {
		p, err := New("B2G1", Rule{Name: "x", Type: TypeBuyXGetY, BuyQuantity: 2, GetQuantity: 1, Active: true})
		require.NoError(t, err)
		res, err := p.Apply(lines, now, 0)
		require.NoError(t, err)
		// six units, two groups of three, two cheapest socks free
		assert.True(t, res.Discount.Equal(d("10")), res.Discount.String())
	})

	t.Run("max discount caps the result", func(t *testing.T) {
		r := percentRule("50")
		limit := d("15")
		r.MaxDiscount = &limit
		p, err := New("CAPPED", r)
		require.NoError(t, err)
		res, err := p.Apply(lines, now, 0)
		require.NoError(t, err)
		assert.True(t, res.Discount.Equal(limit))
	})

	t.Run("eligibility failures", func(t *testing.T) {
		r := percentRule("10")
		r.MinOrderAmount = d("1000")
		p, err := New("BIGSPEND", r)
		require.NoError(t, err)
		_, err = p.Apply(lines, now, 0)
		assert.ErrorIs(t, err, ErrMinOrderNotMet)

		r = percentRule("10")
		r.PerCustomerLimit = 1
		p, err = New("ONCE", r)
		require.NoError(t, err)
		_, err = p.Apply(lines, now, 1)
		assert.ErrorIs(t, err, ErrCustomerLimit)

		r = Rule{Name: "x", Type: TypePercentage, Value: d("10"), Applicability: ApplyToProducts, ProductIDs: []uuid.UUID{uuid.New()}, Active: true}
		p, err = New("OTHER", r)
		require.NoError(t, err)
		_, err = p.Apply(lines, now, 0)
		assert.ErrorIs(t, err, ErrNotApplicable)

		p.SetActive(false)
		_, err = p.Apply(lines, now, 0)
		assert.ErrorIs(t, err, ErrNotActive)
	})
}

func TestPromotion_Usage(t *testing.T) {
	r := percentRule("10")
	r.UsageLimit = 1
	p, err := New("ONEUSE", r)
	require.NoError(t, err)

	require.NoError(t, p.RecordUsage())
	assert.ErrorIs(t, p.RecordUsage(), ErrUsageLimitReached)
	p.ReleaseUsage()
	assert.Equal(t, 0, p.UsedCount)
	p.ReleaseUsage()
	assert.Equal(t, 0, p.UsedCount)
}
