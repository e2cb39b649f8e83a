//go:build property
// +build property

package catalog

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func TestDiscountPercentProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("discount stays within 0..100", prop.ForAll(
		func(priceCents, saleCents int64) bool {
			price := decimal.New(priceCents, -2)
			sale := decimal.New(saleCents, -2)
			d := DiscountPercent(price, &sale)
			return d >= 0 && d <= 100
		},
		gen.Int64Range(-10000, 1000000),
		gen.Int64Range(-10000, 1000000),
	))

	properties.Property("missing sale price means no discount", prop.ForAll(
		func(priceCents int64) bool {
			return DiscountPercent(decimal.New(priceCents, -2), nil) == 0
		},
		gen.Int64Range(-10000, 1000000),
	))

	properties.Property("effective price never exceeds a positive sale price", prop.ForAll(
		func(priceCents, saleCents int64) bool {
			price := decimal.New(priceCents, -2)
			sale := decimal.New(saleCents, -2)
			return EffectivePrice(price, &sale).Equal(sale)
		},
		gen.Int64Range(1, 1000000),
		gen.Int64Range(1, 1000000),
	))

	properties.TestingRun(t)
}
