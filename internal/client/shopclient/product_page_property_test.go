//go:build property
// +build property

package shopclient

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProductPageQuantityProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("quantity stays within [1, max(stock, 1)]", prop.ForAll(
		func(stock int, steps []int) bool {
			page := NewProductPage(nil, nil, nil, nil)
			page.product = &Product{Stock: stock}
			page.quantity = 1
			for _, step := range steps {
				var q int
				switch step % 3 {
				case 0:
					q = page.IncreaseQuantity()
				case 1:
					q = page.DecreaseQuantity()
				default:
					q = page.SetQuantity(step - 50)
				}
				if q < 1 || q > max(stock, 1) {
					return false
				}
			}
			return true
		},
		gen.IntRange(-2, 20),
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}
