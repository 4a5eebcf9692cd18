package filter_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comparador/internal/domain"
	"comparador/internal/filter"
)

func product(id string, m domain.Marketplace, title, brand string, total, days float64, offer bool) *domain.Product {
	return &domain.Product{
		ID: id, Marketplace: m, Title: title, Brand: brand,
		PriceAmount: total, PriceTotal: total, ShippingTimeDays: days, IsOffer: offer,
		URL: domain.NoURL, PriceCurrency: domain.DefaultCurrency,
	}
}

func fixture() []*domain.Product {
	return []*domain.Product{
		product("a1", domain.AliExpress, "Auriculares Bluetooth", "Xiaomi", 24.99, 12, true),
		product("a2", domain.AliExpress, "Cargador USB-C", "Baseus", 9.5, 15, false),
		product("t1", domain.Temu, "Funda de móvil", "—", 3.2, 10, true),
		product("t2", domain.Temu, "Lámpara LED", "Xiaomi", 40, 8, false),
		product("s1", domain.Shopify, "Taza Cerámica", "Mugs Co", 15, 5, false),
	}
}

func ids(ps []*domain.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestApplyDefaultKeepsEverythingInOrder(t *testing.T) {
	in := fixture()
	out, err := filter.Apply(in, filter.Default())
	require.NoError(t, err)
	assert.Equal(t, ids(in), ids(out))
}

func TestApplyEmptyMarketplacesYieldsNothing(t *testing.T) {
	out, err := filter.Apply(fixture(), filter.Spec{Query: "xiaomi", Brand: "Xiaomi"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestApplyConstraints(t *testing.T) {
	cases := []struct {
		name string
		spec filter.Spec
		want []string
	}{
		{"marketplace", filter.Spec{Marketplaces: []domain.Marketplace{domain.Temu}}, []string{"t1", "t2"}},
		{"query title case-insensitive", spec(func(s *filter.Spec) { s.Query = "  LÁMPARA " }), []string{"t2"}},
		{"query brand", spec(func(s *filter.Spec) { s.Query = "xiao" }), []string{"a1", "t2"}},
		{"brand exact", spec(func(s *filter.Spec) { s.Brand = "Xiaomi" }), []string{"a1", "t2"}},
		{"brand is not substring", spec(func(s *filter.Spec) { s.Brand = "Xiao" }), []string{}},
		{"price min inclusive", spec(func(s *filter.Spec) { s.PriceMin = "15" }), []string{"a1", "t2", "s1"}},
		{"price max inclusive", spec(func(s *filter.Spec) { s.PriceMax = "15" }), []string{"a2", "t1", "s1"}},
		{"price range", spec(func(s *filter.Spec) { s.PriceMin = "5"; s.PriceMax = "25" }), []string{"a1", "a2", "s1"}},
		{"equal bounds", spec(func(s *filter.Spec) { s.PriceMin = "15"; s.PriceMax = "15" }), []string{"s1"}},
		{"shipping days inclusive", spec(func(s *filter.Spec) { s.MaxShippingDays = "10" }), []string{"t1", "t2", "s1"}},
		{"only offers", spec(func(s *filter.Spec) { s.OnlyOffers = true }), []string{"a1", "t1"}},
		{"blank bounds are absent", spec(func(s *filter.Spec) { s.PriceMin = "  "; s.MaxShippingDays = "" }), []string{"a1", "a2", "t1", "t2", "s1"}},
		{"combined", spec(func(s *filter.Spec) {
			s.Marketplaces = []domain.Marketplace{domain.AliExpress, domain.Temu}
			s.Query = "u"
			s.PriceMax = "30"
			s.OnlyOffers = true
		}), []string{"a1", "t1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := filter.Apply(fixture(), tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(out))
		})
	}
}

func spec(mod func(*filter.Spec)) filter.Spec {
	s := filter.Default()
	mod(&s)
	return s
}

func TestApplyValidationErrors(t *testing.T) {
	cases := []struct {
		name    string
		spec    filter.Spec
		target  error
		message string
	}{
		{"bad min", spec(func(s *filter.Spec) { s.PriceMin = "abc" }), filter.ErrInvalidPriceMin, "Precio mínimo no válido"},
		{"bad max", spec(func(s *filter.Spec) { s.PriceMax = "1,5" }), filter.ErrInvalidPriceMax, "Precio máximo no válido"},
		{"infinite max", spec(func(s *filter.Spec) { s.PriceMax = "Inf" }), filter.ErrInvalidPriceMax, "Precio máximo no válido"},
		{"inverted range", spec(func(s *filter.Spec) { s.PriceMin = "50"; s.PriceMax = "10" }), filter.ErrInvalidPriceRange, "Rango precio inválido: min > max"},
		{"bad days", spec(func(s *filter.Spec) { s.MaxShippingDays = "soon" }), filter.ErrInvalidShippingDays, "Días de envío no válidos"},
		// min is checked before max
		{"both bad", spec(func(s *filter.Spec) { s.PriceMin = "x"; s.PriceMax = "y" }), filter.ErrInvalidPriceMin, "Precio mínimo no válido"},
		// validation still runs with no marketplace selected
		{"no marketplaces", filter.Spec{PriceMin: "nope"}, filter.ErrInvalidPriceMin, "Precio mínimo no válido"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := filter.Apply(fixture(), tc.spec)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, tc.target))
			assert.Equal(t, tc.message, filter.Message(err))

			var ve *filter.ValidationError
			require.True(t, errors.As(err, &ve))
		})
	}
}

func TestApplyAcceptsOnlyDecimalBounds(t *testing.T) {
	for _, in := range []string{"0x1A", "0x1Ap0", "0b1", "0o7", "1_000", "Infinity", "NaN", "1e400"} {
		s := filter.Default()
		s.PriceMax = in
		_, err := filter.Apply(fixture(), s)
		assert.ErrorIs(t, err, filter.ErrInvalidPriceMax, "priceMax=%q", in)
	}
	for in, want := range map[string]int{" 10 ": 2, "1e1": 2, ".5": 0, "+40": 5, "15.": 3} {
		s := filter.Default()
		s.PriceMax = in
		got, err := filter.Apply(fixture(), s)
		require.NoError(t, err, "priceMax=%q", in)
		assert.Len(t, got, want, "priceMax=%q", in)
	}
}

func TestApplyIsPureIdempotentAndASubset(t *testing.T) {
	in := fixture()
	before := ids(in)
	s := spec(func(s *filter.Spec) { s.Query = "a"; s.PriceMax = "30" })

	once, err := filter.Apply(in, s)
	require.NoError(t, err)
	twice, err := filter.Apply(once, s)
	require.NoError(t, err)

	assert.Equal(t, before, ids(in))
	assert.Equal(t, ids(once), ids(twice))
	for _, p := range once {
		assert.Contains(t, in, p)
	}
}

func TestChips(t *testing.T) {
	s := filter.Spec{
		Query:        "taza",
		Marketplaces: []domain.Marketplace{domain.Shopify},
		Brand:        "Mugs Co",
		PriceMin:     "1",
		OnlyOffers:   true,
	}
	assert.Equal(t, []string{"q:taza", "shopify", "brand:Mugs Co", "min:1", "Solo oferta"}, s.Chips())
}

func TestMessageIgnoresOtherErrors(t *testing.T) {
	assert.Equal(t, "", filter.Message(nil))
	assert.Equal(t, "", filter.Message(errors.New("boom")))
}
