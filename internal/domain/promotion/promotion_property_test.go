//go:build property
// +build property

package promotion

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func TestApplyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("percentage discount never exceeds eligible total", prop.ForAll(
		func(pct int64, priceCents int64, qty int) bool {
			p, err := New("PROP", Rule{Name: "p", Type: TypePercentage, Value: decimal.NewFromInt(pct), Active: true})
			if err != nil {
				return false
			}
			lines := []Line{{ProductID: uuid.New(), UnitPrice: decimal.New(priceCents, -2), Quantity: qty}}
			res, err := p.Apply(lines, time.Now(), 0)
			if err != nil {
				return false
			}
			return !res.Discount.IsNegative() && res.Discount.LessThanOrEqual(res.EligibleTotal)
		},
		gen.Int64Range(1, 100),
		gen.Int64Range(1, 100000),
		gen.IntRange(1, 20),
	))

	properties.Property("buy x get y frees whole groups only", prop.ForAll(
		func(buy, get, qty int) bool {
			p, err := New("BXGY", Rule{Name: "p", Type: TypeBuyXGetY, BuyQuantity: buy, GetQuantity: get, Active: true})
			if err != nil {
				return false
			}
			lines := []Line{{ProductID: uuid.New(), UnitPrice: decimal.NewFromInt(1), Quantity: qty}}
			res, err := p.Apply(lines, time.Now(), 0)
			if err != nil {
				return false
			}
			return res.Discount.Equal(decimal.NewFromInt(int64(qty / (buy + get) * get)))
		},
		gen.IntRange(1, 5),
		gen.IntRange(1, 5),
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}
