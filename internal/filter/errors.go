package filter

import "errors"

// Sentinels for each numeric input; a ValidationError unwraps to one of them.
var (
	ErrInvalidPriceMin     = errors.New("invalid price min")
	ErrInvalidPriceMax     = errors.New("invalid price max")
	ErrInvalidPriceRange   = errors.New("price min greater than max")
	ErrInvalidShippingDays = errors.New("invalid max shipping days")
)

// ValidationError aborts a whole filter call. Message is shown to the user.
type ValidationError struct {
	Field   string
	Message string
	kind    error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.kind }

var (
	errPriceMin = &ValidationError{Field: "priceMin", Message: "Precio mínimo no válido", kind: ErrInvalidPriceMin}
	errPriceMax = &ValidationError{Field: "priceMax", Message: "Precio máximo no válido", kind: ErrInvalidPriceMax}
	errRange    = &ValidationError{Field: "priceRange", Message: "Rango precio inválido: min > max", kind: ErrInvalidPriceRange}
	errDays     = &ValidationError{Field: "maxShippingDays", Message: "Días de envío no válidos", kind: ErrInvalidShippingDays}
)

// Message returns the user-facing text of a validation error, or "" for nil
// and unrelated errors.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return ""
}
