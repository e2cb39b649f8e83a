//go:build property
// +build property

package storefront

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPushRecentProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("result is capped, unique and starts with the pushed id", prop.ForAll(
		func(views []int) bool {
			var list []int
			for _, v := range views {
				list = PushRecent(list, v, MaxRecentlyViewed)
				if len(list) > MaxRecentlyViewed || list[0] != v {
					return false
				}
				seen := map[int]bool{}
				for _, x := range list {
					if seen[x] {
						return false
					}
					seen[x] = true
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 25)),
	))

	properties.TestingRun(t)
}
