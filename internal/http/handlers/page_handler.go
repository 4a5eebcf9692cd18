package handlers

import (
	"github.com/gofiber/fiber/v2"

	"comparador/internal/export"
	"comparador/internal/log"
	"comparador/internal/services"
	"comparador/internal/sorting"
	"comparador/internal/validate"
)

// PageHandler drives the interactive results page. Every action updates the
// catalog's State and renders it.
type PageHandler struct {
	Catalog *services.CatalogService
}

func (h *PageHandler) Home(c *fiber.Ctx) error {
	return renderState(c, h.Catalog.State(), h.Catalog.Brands())
}

func (h *PageHandler) Search(c *fiber.Ctx) error {
	var form validate.Form
	if err := c.QueryParser(&form); err != nil {
		log.Security(c, "validation.fail", map[string]any{"err": err.Error()})
		return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": "Formulario no válido"})
	}
	form.Normalize()
	if err := validate.Struct(form); err != nil {
		log.Security(c, "validation.fail", map[string]any{"fields": validate.Fields(err)})
		return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": "Formulario no válido"})
	}

	st, err := h.Catalog.ApplyFilters(specFromForm(form, false))
	if err != nil {
		log.Info(c, "search.invalid", map[string]any{"message": st.Err})
		c.Status(fiber.StatusBadRequest)
	}
	return renderState(c, st, h.Catalog.Brands())
}

func (h *PageHandler) Clear(c *fiber.Ctx) error {
	return renderState(c, h.Catalog.Clear(), h.Catalog.Brands())
}

func (h *PageHandler) Sort(c *fiber.Ctx) error {
	key := sorting.Key(c.Query("key"))
	if !key.Valid() {
		log.Security(c, "validation.fail", map[string]any{"field": "key"})
		return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": "Orden no válido"})
	}
	return renderState(c, h.Catalog.SetSort(key), h.Catalog.Brands())
}

func (h *PageHandler) SortColumn(c *fiber.Ctx) error {
	field, ok := validate.Field(c.Params("field"))
	if !ok || !sorting.ColumnKey(field).Valid() {
		log.Security(c, "validation.fail", map[string]any{"field": "column"})
		return notFound(c, "Columna desconocida")
	}
	return renderState(c, h.Catalog.SetColumnSort(field), h.Catalog.Brands())
}

func (h *PageHandler) View(c *fiber.Ctx) error {
	v, ok := services.ParseView(c.Query("mode"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": "Vista no válida"})
	}
	return renderState(c, h.Catalog.SetView(v), h.Catalog.Brands())
}

// Export downloads the visible rows as CSV.
func (h *PageHandler) Export(c *fiber.Ctx) error {
	rows := h.Catalog.State().Export()
	c.Attachment(export.Filename(c.Query("name")))
	c.Set(fiber.HeaderContentType, export.CSV.ContentType())
	if err := export.WriteCSV(c.Response().BodyWriter(), rows); err != nil {
		return err
	}
	log.Audit(c, "export.csv", map[string]any{"rows": len(rows)})
	return nil
}
