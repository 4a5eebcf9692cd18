package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Marketplace is one of the supported product sources.
type Marketplace string

const (
	AliExpress Marketplace = "aliexpress"
	Temu       Marketplace = "temu"
	Shopify    Marketplace = "shopify"
)

// Marketplaces lists every known marketplace in display order.
func Marketplaces() []Marketplace {
	return []Marketplace{AliExpress, Temu, Shopify}
}

// ParseMarketplace matches s case-insensitively against the known marketplaces.
func ParseMarketplace(s string) (Marketplace, bool) {
	m := Marketplace(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case AliExpress, Temu, Shopify:
		return m, true
	}
	return "", false
}

// Label is the capitalised marketplace name used by badges.
func (m Marketplace) Label() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

const (
	NoBrand         = "—"
	NoURL           = "#"
	DefaultCurrency = "USD"
)

// Product is the canonical record every source is normalized into.
// PriceTotal is derived by Enrich and must not be set anywhere else.
type Product struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Brand            string      `json:"brand"`
	Marketplace      Marketplace `json:"marketplace"`
	PriceAmount      float64     `json:"price_amount"`
	PriceCurrency    string      `json:"price_currency"`
	ShippingCost     float64     `json:"shipping_cost"`
	ShippingTimeDays float64     `json:"shipping_time_days"`
	IsOffer          bool        `json:"is_offer"`
	URL              string      `json:"url"`
	Rating           *float64    `json:"rating"`
	Image            *string     `json:"image"`
	PriceTotal       float64     `json:"price_total"`
}

// Enrich computes PriceTotal. The loader calls it exactly once per product,
// right after normalization.
func (p *Product) Enrich() *Product {
	p.PriceTotal = Round2(p.PriceAmount + p.ShippingCost)
	return p
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// ExportRow is the flat projection handed to export and reporting consumers.
type ExportRow struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Brand            string      `json:"brand"`
	Marketplace      Marketplace `json:"marketplace"`
	PriceTotal       float64     `json:"price_total"`
	ShippingTimeDays float64     `json:"shipping_time_days"`
	URL              string      `json:"url"`
}

func (p *Product) ExportRow() ExportRow {
	return ExportRow{
		ID:               p.ID,
		Title:            p.Title,
		Brand:            p.Brand,
		Marketplace:      p.Marketplace,
		PriceTotal:       p.PriceTotal,
		ShippingTimeDays: p.ShippingTimeDays,
		URL:              p.URL,
	}
}

// FormatMoney renders "USD 12.50"; an empty currency drops the prefix.
func FormatMoney(amount float64, currency string) string {
	s := decimal.NewFromFloat(amount).StringFixed(2)
	if currency == "" {
		return s
	}
	return currency + " " + s
}
