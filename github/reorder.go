package github

import (
	"cmp"
	"slices"
)

// Reorder returns a stably sorted copy of items. The search API does not
// guarantee its ordering for every sort field, so a fetched page is re-sorted
// before display. Unknown fields return an unsorted copy. items is never modified.
func Reorder(items []Repository, field SortField, direction SortDirection) []Repository {
	sorted := slices.Clone(items)

	var key func(r *Repository) int64
	switch field {
	case SortUpdated:
		key = func(r *Repository) int64 { return r.UpdatedAt.UnixNano() }
	case SortStars:
		key = func(r *Repository) int64 { return int64(r.StargazersCount) }
	case SortForks:
		key = func(r *Repository) int64 { return int64(r.ForksCount) }
	default:
		return sorted
	}

	slices.SortStableFunc(sorted, func(a, b Repository) int {
		if direction == OrderAsc {
			return cmp.Compare(key(&a), key(&b))
		}
		return cmp.Compare(key(&b), key(&a))
	})

	return sorted
}
