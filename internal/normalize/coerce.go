package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"comparador/internal/domain"
)

var (
	reNotNumeric = regexp.MustCompile(`[^0-9.\-]`)
	// longest leading float literal, the way loose parsers read "1.2.3" as 1.2
	reLeadingFloat = regexp.MustCompile(`^-?(?:[0-9]+\.?[0-9]*|\.[0-9]+)`)
)

// ParseNumber coerces loosely formatted input ("$1,299.99", " 5 ", 12) to a
// number. Absent, empty and unparseable input yields an invalid Number.
func ParseNumber(v any) domain.Number {
	switch x := v.(type) {
	case nil:
		return domain.Number{}
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return domain.Some(float64(x))
	case int64:
		return domain.Some(float64(x))
	case bool:
		// "true"/"false" carry no digits
		return domain.Number{}
	}
	s := domain.Text(v)
	if s == "" {
		return domain.Number{}
	}
	cleaned := reNotNumeric.ReplaceAllString(s, "")
	lit := reLeadingFloat.FindString(cleaned)
	if lit == "" {
		return domain.Number{}
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(lit, "."), 64)
	if err != nil {
		return domain.Number{}
	}
	return finite(n)
}

func finite(f float64) domain.Number {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return domain.Number{}
	}
	return domain.Some(f)
}
