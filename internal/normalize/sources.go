package normalize

import (
	"comparador/internal/domain"
)

type mapFunc func(f fields) *domain.Product

// mappers holds one pure mapping per marketplace; a test keeps it exhaustive.
var mappers = map[domain.Marketplace]mapFunc{
	domain.AliExpress: mapAliExpress,
	domain.Temu:       mapTemu,
	domain.Shopify:    mapShopify,
}

func mapAliExpress(f fields) *domain.Product {
	return &domain.Product{
		ID:               f.text("id", "item_id", "sku"),
		Title:            f.text("title", "name"),
		Brand:            f.textOr(domain.NoBrand, "brand", "seller", "marca"),
		Marketplace:      domain.AliExpress,
		PriceAmount:      f.amount("price", "price_amount"),
		PriceCurrency:    f.textOr(domain.DefaultCurrency, "currency", "price_currency"),
		ShippingCost:     f.amount("shipping_cost", "postage"),
		ShippingTimeDays: f.days(DefaultShippingDays(domain.AliExpress), "shipping_time_days", "ship_days"),
		IsOffer:          f.flag("is_offer", "discounted", "sale"),
		URL:              f.textOr(domain.NoURL, "url", "link"),
		Rating:           f.optNumber("rating"),
		Image:            f.optText("image", "image_url"),
	}
}

func mapTemu(f fields) *domain.Product {
	return &domain.Product{
		ID:               f.text("id", "itemId"),
		Title:            f.text("title", "name"),
		Brand:            f.textOr(domain.NoBrand, "brand", "vendor"),
		Marketplace:      domain.Temu,
		PriceAmount:      f.amount("price", "amount"),
		PriceCurrency:    f.textOr(domain.DefaultCurrency, "currency", "price_currency"),
		ShippingCost:     f.amount("shipping", "shipping_cost"),
		ShippingTimeDays: f.days(DefaultShippingDays(domain.Temu), "delivery_days", "shipping_days"),
		IsOffer:          f.flag("on_sale", "is_offer"),
		URL:              f.textOr(domain.NoURL, "url", "link"),
		Rating:           f.optNumber("rating"),
		Image:            f.optText("image", "thumbnail"),
	}
}

// shopifyProductURL is the storefront used when a row only has a handle.
const shopifyProductURL = "https://example.com/products/"

func mapShopify(f fields) *domain.Product {
	url := f.text("url", "link")
	if url == "" {
		if handle := f.text("handle"); handle != "" {
			url = shopifyProductURL + handle
		} else {
			url = domain.NoURL
		}
	}
	return &domain.Product{
		ID:               f.text("id", "sku", "handle"),
		Title:            f.text("title", "name"),
		Brand:            f.textOr(domain.NoBrand, "vendor", "brand"),
		Marketplace:      domain.Shopify,
		PriceAmount:      f.amount("price", "variant_price"),
		PriceCurrency:    f.textOr(domain.DefaultCurrency, "currency", "price_currency"),
		ShippingCost:     f.amount("shipping_cost", "shipping"),
		ShippingTimeDays: f.days(DefaultShippingDays(domain.Shopify), "shipping_days", "delivery_days"),
		IsOffer:          f.flag("on_sale", "is_offer", "sale"),
		URL:              url,
		Rating:           f.optNumber("rating"),
		Image:            f.optText("image", "image_url"),
	}
}
