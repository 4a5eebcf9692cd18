package services

import (
	"slices"
	"strings"

	"comparador/internal/domain"
	"comparador/internal/export"
	"comparador/internal/filter"
	"comparador/internal/sorting"
)

type View string

const (
	ViewCards View = "cards"
	ViewTable View = "table"
)

func ParseView(s string) (View, bool) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewCards, ViewTable:
		return v, true
	}
	return "", false
}

// State is one user's view of the catalog. Transitions return a new State
// and never modify the receiver's slices.
type State struct {
	Raw      []*domain.Product
	Filtered []*domain.Product
	Filters  filter.Spec
	Sort     sorting.Key
	View     View
	// Err is the last validation message shown to the user.
	Err string
}

// NewState shows every record, cheapest total first.
func NewState(raw []*domain.Product) State {
	return State{
		Raw:      raw,
		Filtered: slices.Clone(raw),
		Filters:  filter.Default(),
		Sort:     sorting.PriceTotalAsc,
		View:     ViewCards,
	}
}

// WithFilters records spec and re-filters Raw. On a validation error the
// previous Filtered set is kept, Err carries the message and the error is
// returned. Err clears only when the new result is non-empty.
func (s State) WithFilters(spec filter.Spec) (State, error) {
	s.Filters = spec
	out, err := filter.Apply(s.Raw, spec)
	if err != nil {
		s.Err = filter.Message(err)
		return s, err
	}
	s.Filtered = out
	if len(out) > 0 {
		s.Err = ""
	}
	return s, nil
}

// WithSort sets a preset ordering; unknown keys leave the order unchanged.
func (s State) WithSort(key sorting.Key) State {
	s.Sort = key
	return s
}

// WithColumnSort orders by one column, replacing any preset.
func (s State) WithColumnSort(field string) State {
	s.Sort = sorting.ColumnKey(field)
	return s
}

func (s State) WithView(v View) State {
	s.View = v
	return s
}

// Cleared resets filters to defaults and shows the whole set as cards. The
// sort key survives.
func (s State) Cleared() State {
	s.Filters = filter.Default()
	s.Filtered = slices.Clone(s.Raw)
	s.View = ViewCards
	s.Err = ""
	return s
}

// WithRaw swaps in a freshly loaded set and re-applies the current filters.
// Filters that no longer validate fall back to the whole set.
func (s State) WithRaw(raw []*domain.Product) State {
	s.Raw = raw
	next, err := s.WithFilters(s.Filters)
	if err != nil {
		return s.Cleared()
	}
	return next
}

// Visible is Filtered in the active order.
func (s State) Visible() []*domain.Product {
	return sorting.Sort(s.Filtered, s.Sort)
}

func (s State) Count() int { return len(s.Filtered) }

// Export projects the visible rows.
func (s State) Export() []domain.ExportRow {
	return export.Rows(s.Visible())
}

// Chips labels the active filters.
func (s State) Chips() []string { return s.Filters.Chips() }

// Brands is the sorted set of distinct non-empty brands in Raw.
func (s State) Brands() []string { return Brands(s.Raw) }

func Brands(products []*domain.Product) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range products {
		if p.Brand != "" && !seen[p.Brand] {
			seen[p.Brand] = true
			out = append(out, p.Brand)
		}
	}
	slices.Sort(out)
	return out
}
