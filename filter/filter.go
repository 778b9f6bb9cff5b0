// Package filter narrows the store list to what the map should display.
package filter

import "sweetmap/models"

// ByGenres returns the stores eligible under the given genre selection, in
// input order. An empty selection keeps every store. Stores without any genre
// are always eligible.
func ByGenres(stores []models.Store, selected []string) []models.Store {
	if len(selected) == 0 {
		return append([]models.Store(nil), stores...)
	}
	want := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		want[id] = struct{}{}
	}

	out := make([]models.Store, 0, len(stores))
	for _, s := range stores {
		if len(s.Genres) == 0 {
			out = append(out, s)
			continue
		}
		for _, g := range s.Genres {
			if _, ok := want[g]; ok {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// IDs lists store ids in order.
func IDs(stores []models.Store) []string {
	ids := make([]string, len(stores))
	for i, s := range stores {
		ids[i] = s.ID
	}
	return ids
}
