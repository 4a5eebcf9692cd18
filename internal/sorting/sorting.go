// Package sorting orders product sets by preset or column keys.
package sorting

import (
	"cmp"
	"slices"
	"strings"

	"comparador/internal/domain"
)

type Key string

const (
	PriceTotalAsc   Key = "price_total_asc"
	PriceTotalDesc  Key = "price_total_desc"
	FastestShipping Key = "fastest_shipping"
	BestPriceTime   Key = "best_price_time"
)

const columnPrefix = "column:"

// Presets lists the named orderings offered to users.
func Presets() []Key {
	return []Key{PriceTotalAsc, PriceTotalDesc, FastestShipping, BestPriceTime}
}

// ColumnKey orders ascending by one product field, named as in its JSON form.
func ColumnKey(field string) Key {
	return Key(columnPrefix + field)
}

// Column returns the field of a column key, or "" for presets.
func (k Key) Column() string {
	f, ok := strings.CutPrefix(string(k), columnPrefix)
	if !ok {
		return ""
	}
	return f
}

// Valid reports whether k names a preset or a known column.
func (k Key) Valid() bool {
	if slices.Contains(Presets(), k) {
		return true
	}
	_, ok := columns[k.Column()]
	return ok
}

// Score is the weighted price/time figure used by BestPriceTime.
func Score(p *domain.Product) float64 {
	return 0.7*p.PriceTotal + 0.3*p.ShippingTimeDays
}

// Sort returns a stably ordered copy of records. Unknown keys keep the input
// order; the input slice is left untouched.
func Sort(records []*domain.Product, key Key) []*domain.Product {
	out := slices.Clone(records)
	if out == nil {
		out = []*domain.Product{}
	}
	if c := comparator(key); c != nil {
		slices.SortStableFunc(out, c)
	}
	return out
}

type compareFunc func(a, b *domain.Product) int

func comparator(key Key) compareFunc {
	switch key {
	case PriceTotalAsc:
		return func(a, b *domain.Product) int { return cmp.Compare(a.PriceTotal, b.PriceTotal) }
	case PriceTotalDesc:
		return func(a, b *domain.Product) int { return cmp.Compare(b.PriceTotal, a.PriceTotal) }
	case FastestShipping:
		return func(a, b *domain.Product) int { return cmp.Compare(a.ShippingTimeDays, b.ShippingTimeDays) }
	case BestPriceTime:
		return func(a, b *domain.Product) int { return cmp.Compare(Score(a), Score(b)) }
	}
	return columns[key.Column()]
}

var columns = map[string]compareFunc{
	"id":                 byString(func(p *domain.Product) string { return p.ID }),
	"title":              byString(func(p *domain.Product) string { return p.Title }),
	"brand":              byString(func(p *domain.Product) string { return p.Brand }),
	"marketplace":        byString(func(p *domain.Product) string { return string(p.Marketplace) }),
	"price_currency":     byString(func(p *domain.Product) string { return p.PriceCurrency }),
	"url":                byString(func(p *domain.Product) string { return p.URL }),
	"price_amount":       byNumber(func(p *domain.Product) float64 { return p.PriceAmount }),
	"shipping_cost":      byNumber(func(p *domain.Product) float64 { return p.ShippingCost }),
	"shipping_time_days": byNumber(func(p *domain.Product) float64 { return p.ShippingTimeDays }),
	"price_total":        byNumber(func(p *domain.Product) float64 { return p.PriceTotal }),
	"is_offer": func(a, b *domain.Product) int {
		return cmp.Compare(boolRank(a.IsOffer), boolRank(b.IsOffer))
	},
	"rating": func(a, b *domain.Product) int {
		return optional(a.Rating, b.Rating, cmp.Compare[float64])
	},
	"image": func(a, b *domain.Product) int {
		return optional(a.Image, b.Image, strings.Compare)
	},
}

func byString(get func(*domain.Product) string) compareFunc {
	return func(a, b *domain.Product) int { return strings.Compare(get(a), get(b)) }
}

func byNumber(get func(*domain.Product) float64) compareFunc {
	return func(a, b *domain.Product) int { return cmp.Compare(get(a), get(b)) }
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// optional orders absent values first.
func optional[T any](a, b *T, c func(T, T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return c(*a, *b)
}
