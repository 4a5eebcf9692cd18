// Package filter narrows a product set down to what a Spec selects.
package filter

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"comparador/internal/domain"
)

// Spec is the set of user constraints. Numeric bounds arrive as text and are
// validated by Apply.
type Spec struct {
	Query           string
	Marketplaces    []domain.Marketplace
	Brand           string
	PriceMin        string
	PriceMax        string
	MaxShippingDays string
	OnlyOffers      bool
}

// Default selects every marketplace and nothing else, like a freshly reset form.
func Default() Spec {
	return Spec{Marketplaces: domain.Marketplaces()}
}

// Apply returns the records matching every constraint of spec, in input
// order. The input slice is never modified. An empty marketplace set matches
// nothing. A malformed numeric bound aborts the call with a *ValidationError
// and no partial result.
func Apply(records []*domain.Product, spec Spec) ([]*domain.Product, error) {
	out := keep(records, func(p *domain.Product) bool {
		return slices.Contains(spec.Marketplaces, p.Marketplace)
	})

	if q := strings.TrimSpace(spec.Query); q != "" {
		lower := cases.Lower(language.Und)
		q = lower.String(q)
		out = keep(out, func(p *domain.Product) bool {
			return strings.Contains(lower.String(p.Title), q) || strings.Contains(lower.String(p.Brand), q)
		})
	}

	if spec.Brand != "" {
		out = keep(out, func(p *domain.Product) bool { return p.Brand == spec.Brand })
	}

	lo, hasMin, err := bound(spec.PriceMin, errPriceMin)
	if err != nil {
		return nil, err
	}
	if hasMin {
		out = keep(out, func(p *domain.Product) bool { return p.PriceTotal >= lo })
	}

	hi, hasMax, err := bound(spec.PriceMax, errPriceMax)
	if err != nil {
		return nil, err
	}
	if hasMax {
		out = keep(out, func(p *domain.Product) bool { return p.PriceTotal <= hi })
	}

	if hasMin && hasMax && lo > hi {
		return nil, errRange
	}

	days, hasDays, err := bound(spec.MaxShippingDays, errDays)
	if err != nil {
		return nil, err
	}
	if hasDays {
		out = keep(out, func(p *domain.Product) bool { return p.ShippingTimeDays <= days })
	}

	if spec.OnlyOffers {
		out = keep(out, func(p *domain.Product) bool { return p.IsOffer })
	}
	return out, nil
}

// bound parses an optional numeric input. Blank input is absent. Only decimal
// notation is accepted; hex floats ("0x1Ap0") and "_" separators, which
// ParseFloat would take, are rejected along with "0x1A", "0b1" and "0o7".
func bound(s string, invalid *ValidationError) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	if strings.ContainsAny(s, "xX_") {
		return 0, false, invalid
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false, invalid
	}
	return n, true, nil
}

func keep(in []*domain.Product, ok func(*domain.Product) bool) []*domain.Product {
	out := make([]*domain.Product, 0, len(in))
	for _, p := range in {
		if ok(p) {
			out = append(out, p)
		}
	}
	return out
}

// Chips describes the active constraints as short labels for display.
func (s Spec) Chips() []string {
	var chips []string
	if q := strings.TrimSpace(s.Query); q != "" {
		chips = append(chips, "q:"+q)
	}
	for _, m := range s.Marketplaces {
		chips = append(chips, string(m))
	}
	if s.Brand != "" {
		chips = append(chips, "brand:"+s.Brand)
	}
	if v := strings.TrimSpace(s.PriceMin); v != "" {
		chips = append(chips, "min:"+v)
	}
	if v := strings.TrimSpace(s.PriceMax); v != "" {
		chips = append(chips, "max:"+v)
	}
	if s.OnlyOffers {
		chips = append(chips, "Solo oferta")
	}
	return chips
}
