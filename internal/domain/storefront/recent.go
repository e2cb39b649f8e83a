package storefront

// MaxRecentlyViewed caps the recently viewed list
const MaxRecentlyViewed = 10

// PushRecent moves item to the front of list, removing any earlier copy and
// dropping the oldest entries beyond limit. The input slice is not modified.
func PushRecent[T comparable](list []T, item T, limit int) []T {
	if limit < 1 {
		return []T{}
	}
	out := make([]T, 0, min(len(list)+1, limit))
	out = append(out, item)
	for _, v := range list {
		if len(out) == limit {
			break
		}
		if v != item {
			out = append(out, v)
		}
	}
	return out
}

// Without returns items whose key differs from exclude, keeping order
func Without[T any, K comparable](items []T, key func(T) K, exclude K) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if key(it) != exclude {
			out = append(out, it)
		}
	}
	return out
}
