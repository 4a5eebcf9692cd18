package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	reID    = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)
	reField = regexp.MustCompile(`^[a-z_]{1,32}$`)
	// SQL identifiers, optionally schema-qualified
	reTable = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}(\.[A-Za-z_][A-Za-z0-9_]{0,62})?$`)

	v = validator.New(validator.WithRequiredStructEnabled())
)

const maxQ = 100

// Struct runs the struct-tag rules on s.
func Struct(s any) error { return v.Struct(s) }

// Q trims a search query, drops control characters and caps its length.
// An empty result is still valid: it means "no query".
func Q(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if r := []rune(s); len(r) > maxQ {
		s = string(r[:maxQ])
	}
	return s
}

// ID validates a product identifier from a URL segment.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Field validates a column name used for sorting.
func Field(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, reField.MatchString(s)
}

// Table validates a table name before it is placed in a query.
func Table(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reTable.MatchString(s)
}

// Form is the raw filter form as submitted. Numeric fields stay text; the
// filter engine owns their validation and messages.
type Form struct {
	Q               string   `form:"q" query:"q" validate:"max=200"`
	Marketplaces    []string `form:"marketplaces" query:"marketplaces" validate:"max=3,dive,oneof=aliexpress temu shopify"`
	Brand           string   `form:"brand" query:"brand" validate:"max=100"`
	PriceMin        string   `form:"priceMin" query:"priceMin" validate:"max=32"`
	PriceMax        string   `form:"priceMax" query:"priceMax" validate:"max=32"`
	MaxShippingDays string   `form:"maxShippingDays" query:"maxShippingDays" validate:"max=32"`
	OnlyOffers      bool     `form:"onlyOffers" query:"onlyOffers"`
}

// Normalize lowercases marketplaces and trims text fields in place.
func (f *Form) Normalize() {
	for i, m := range f.Marketplaces {
		f.Marketplaces[i] = strings.ToLower(strings.TrimSpace(m))
	}
	f.Q = Q(f.Q)
	f.Brand = strings.TrimSpace(f.Brand)
}

// Fields lists the offending form fields of a validation failure.
func Fields(err error) []string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		out = append(out, fe.Field())
	}
	return out
}
