package normalize

import (
	"strings"

	"comparador/internal/domain"
)

// fields reads alternative keys of one raw record in priority order.
type fields struct {
	raw         domain.RawRecord
	policy      Policy
	looseOffers bool
}

// text returns the first truthy alternative as a string, "" if none.
func (f fields) text(keys ...string) string {
	for _, k := range keys {
		if v, ok := f.raw.Get(k); ok && domain.Truthy(v) {
			return domain.Text(v)
		}
	}
	return ""
}

func (f fields) textOr(def string, keys ...string) string {
	if s := f.text(keys...); s != "" {
		return s
	}
	return def
}

func (f fields) optText(keys ...string) *string {
	if s := f.text(keys...); s != "" {
		return &s
	}
	return nil
}

func (f fields) usable(n domain.Number) bool {
	return n.Valid && (f.policy == ZeroIsValue || n.Value != 0)
}

// amount reads a money field: first usable non-negative alternative, else 0.
func (f fields) amount(keys ...string) float64 {
	for _, k := range keys {
		v, _ := f.raw.Get(k)
		if n := ParseNumber(v); f.usable(n) && n.Value >= 0 {
			return n.Value
		}
	}
	return 0
}

// days reads a delivery time. Zero or negative is never a valid time, under
// either policy.
func (f fields) days(def float64, keys ...string) float64 {
	for _, k := range keys {
		v, _ := f.raw.Get(k)
		if n := ParseNumber(v); n.Valid && n.Value > 0 {
			return n.Value
		}
	}
	return def
}

func (f fields) optNumber(keys ...string) *float64 {
	for _, k := range keys {
		v, _ := f.raw.Get(k)
		if n := ParseNumber(v); f.usable(n) {
			out := n.Value
			return &out
		}
	}
	return nil
}

// flag is true when any alternative is set. Delimited sources deliver
// booleans as text, so the usual spellings of "no" count as unset unless
// looseOffers is on.
func (f fields) flag(keys ...string) bool {
	for _, k := range keys {
		v, _ := f.raw.Get(k)
		if s, ok := v.(string); ok && !f.looseOffers {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "", "false", "0", "no", "n", "off":
				continue
			}
			return true
		}
		if domain.Truthy(v) {
			return true
		}
	}
	return false
}
