package models

// MarkerGroup is one display bucket of markers sharing a category.
type MarkerGroup struct {
	CategoryID *int     `json:"categoryId,omitempty"`
	Title      string   `json:"title"`
	Color      *string  `json:"color,omitempty"`
	Markers    []Marker `json:"markers"`
}

// GroupByCategory buckets markers by their category for panel display. It is
// a pure computation over the in-memory lists: groups follow the order of the
// categories slice, empty categories are skipped, markers keep their input
// order within each group, and the "Uncategorized" bucket sorts last.
func GroupByCategory(markers []Marker, categories []Category) []MarkerGroup {
	byCategory := make(map[int][]Marker)
	var uncategorized []Marker
	for _, m := range markers {
		if m.CategoryID == nil {
			uncategorized = append(uncategorized, m)
			continue
		}
		byCategory[*m.CategoryID] = append(byCategory[*m.CategoryID], m)
	}

	groups := make([]MarkerGroup, 0, len(categories)+1)
	for _, c := range categories {
		items, ok := byCategory[c.ID]
		if !ok {
			continue
		}
		id := c.ID
		groups = append(groups, MarkerGroup{
			CategoryID: &id,
			Title:      c.Title,
			Color:      c.Color,
			Markers:    items,
		})
		delete(byCategory, c.ID)
	}
	// Markers pointing at a category missing from the list (should not happen
	// with same-map enforcement) fall back to the uncategorized bucket.
	for _, stray := range byCategory {
		uncategorized = append(uncategorized, stray...)
	}
	if len(uncategorized) > 0 {
		groups = append(groups, MarkerGroup{
			Title:   "Uncategorized",
			Markers: uncategorized,
		})
	}
	return groups
}
