package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"comparador/internal/domain"
	"comparador/internal/export"
	"comparador/internal/filter"
	"comparador/internal/log"
	"comparador/internal/services"
	"comparador/internal/sorting"
	"comparador/internal/validate"
)

// APIHandler serves stateless JSON reads of the catalog.
type APIHandler struct {
	Catalog *services.CatalogService
}

// specFromForm builds a filter spec. With allIfAbsent an empty marketplace
// list selects every marketplace instead of none.
func specFromForm(f validate.Form, allIfAbsent bool) filter.Spec {
	spec := filter.Spec{
		Query:           f.Q,
		Brand:           f.Brand,
		PriceMin:        f.PriceMin,
		PriceMax:        f.PriceMax,
		MaxShippingDays: f.MaxShippingDays,
		OnlyOffers:      f.OnlyOffers,
	}
	for _, s := range f.Marketplaces {
		if m, ok := domain.ParseMarketplace(s); ok {
			spec.Marketplaces = append(spec.Marketplaces, m)
		}
	}
	if len(f.Marketplaces) == 0 && allIfAbsent {
		spec.Marketplaces = domain.Marketplaces()
	}
	return spec
}

// query parses filter and sort parameters and runs them. A non-nil error has
// already been written to the response.
func (h *APIHandler) query(c *fiber.Ctx) ([]*domain.Product, bool, error) {
	var form validate.Form
	if err := c.QueryParser(&form); err != nil {
		log.Security(c, "validation.fail", map[string]any{"err": err.Error()})
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid query"})
	}
	form.Normalize()
	if err := validate.Struct(form); err != nil {
		fields := validate.Fields(err)
		log.Security(c, "validation.fail", map[string]any{"fields": fields})
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid query", "fields": fields})
	}
	key := sorting.Key(c.Query("sort"))
	if key != "" && !key.Valid() {
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown sort key"})
	}

	products, err := h.Catalog.Query(specFromForm(form, true), key)
	var ve *filter.ValidationError
	switch {
	case errors.As(err, &ve):
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Message, "field": ve.Field})
	case err != nil:
		return nil, false, err
	}
	return products, true, nil
}

func (h *APIHandler) Products(c *fiber.Ctx) error {
	products, ok, err := h.query(c)
	if !ok {
		return err
	}
	return c.JSON(fiber.Map{"items": products, "count": len(products)})
}

func (h *APIHandler) Product(c *fiber.Ctx) error {
	m, ok := domain.ParseMarketplace(c.Params("marketplace"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown marketplace"})
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "id"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	p, found := h.Catalog.Find(m, id)
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	return c.JSON(p)
}

func (h *APIHandler) Brands(c *fiber.Ctx) error {
	brands := h.Catalog.Brands()
	if brands == nil {
		brands = []string{}
	}
	return c.JSON(fiber.Map{"brands": brands})
}

// Export writes the filtered, sorted rows as CSV (default) or JSON.
func (h *APIHandler) Export(c *fiber.Ctx) error {
	products, ok, err := h.query(c)
	if !ok {
		return err
	}
	f := export.ParseFormat(c.Query("format"))
	if f == export.CSV {
		c.Attachment(export.Filename(c.Query("name")))
	}
	c.Set(fiber.HeaderContentType, f.ContentType())
	rows := export.Rows(products)
	if err := export.Write(c.Response().BodyWriter(), f, rows); err != nil {
		return err
	}
	log.Audit(c, "export."+string(f), map[string]any{"rows": len(rows)})
	return nil
}

// Health reports the loaded snapshot.
func (h *APIHandler) Health(c *fiber.Ctx) error {
	snap, err := h.Catalog.Snapshot()
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"ok":        true,
		"snapshot":  snap.ID.String(),
		"loaded_at": snap.LoadedAt,
		"products":  len(snap.Products),
		"failures":  len(snap.Failures),
	})
}
