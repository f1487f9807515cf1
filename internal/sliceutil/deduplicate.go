// Package sliceutil holds small generic slice helpers shared by the
// config layer.
package sliceutil

// Deduplicate returns items with later duplicates dropped, keeping the
// first occurrence of each key in its original position. key derives the
// comparison key for an item; for scalar slices pass the identity.
func Deduplicate[T any, K comparable](items []T, key func(T) K) []T {
	if len(items) < 2 {
		return items
	}

	seen := make(map[K]struct{}, len(items))
	out := items[:0:0]
	for _, item := range items {
		k := key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}
