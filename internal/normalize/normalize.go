// Package normalize maps marketplace-specific raw records to domain.Product.
package normalize

import (
	"comparador/internal/domain"
)

// Policy decides whether a parsed zero counts as a value or falls through to
// the next alternative field.
type Policy int

const (
	// ZeroIsMissing treats 0 like an absent field: "price": "0" falls back to
	// the alternative field and then to the literal default.
	ZeroIsMissing Policy = iota
	// ZeroIsValue keeps a parsed 0 from the first field that has one.
	ZeroIsValue
)

func (p Policy) String() string {
	if p == ZeroIsValue {
		return "zero_is_value"
	}
	return "zero_is_missing"
}

// Normalizer converts raw records using a fixed fallback policy. The zero
// value uses ZeroIsMissing.
type Normalizer struct {
	Policy Policy
	// LooseOffers makes any truthy offer field count, so text like "false"
	// or "no" marks an offer as the legacy loader did.
	LooseOffers bool
}

func New(p Policy) *Normalizer { return &Normalizer{Policy: p} }

var std = &Normalizer{}

// Normalize uses the default ZeroIsMissing policy.
func Normalize(source string, raw domain.RawRecord) *domain.Product {
	return std.Normalize(source, raw)
}

// Normalize maps raw to a Product according to the source tag. Unknown tags
// go through Guess. It never fails: every field degrades to its default.
func (n *Normalizer) Normalize(source string, raw domain.RawRecord) *domain.Product {
	m, ok := domain.ParseMarketplace(source)
	if !ok {
		m = Guess(raw)
	}
	return mappers[m](fields{raw: raw, policy: n.Policy, looseOffers: n.LooseOffers})
}

// Guess picks a mapping for records from an unknown source by looking at their
// own "marketplace" field. It only tells temu from shopify and is lossy:
// aliexpress-shaped records land in the shopify mapping.
func Guess(raw domain.RawRecord) domain.Marketplace {
	if raw.String("marketplace") == string(domain.Temu) {
		return domain.Temu
	}
	return domain.Shopify
}

// DefaultShippingDays is used when a record carries no usable delivery time.
func DefaultShippingDays(m domain.Marketplace) float64 {
	switch m {
	case domain.AliExpress:
		return 7
	case domain.Temu:
		return 10
	}
	return 5
}
