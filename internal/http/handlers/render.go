package handlers

import (
	"fmt"
	"slices"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"comparador/internal/domain"
	"comparador/internal/services"
	"comparador/internal/sorting"
)

// NewViews loads the HTML templates under dir with the view helpers.
func NewViews(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFuncMap(map[string]any{
		"money": domain.FormatMoney,
		"rating": func(r *float64) string {
			if r == nil {
				return ""
			}
			return fmt.Sprintf("%.1f", *r)
		},
		"hasMarketplace": func(list []domain.Marketplace, m domain.Marketplace) bool {
			return slices.Contains(list, m)
		},
	})
	return engine
}

type sortOption struct {
	Key   sorting.Key
	Label string
}

var sortOptions = []sortOption{
	{sorting.PriceTotalAsc, "Precio total: menor a mayor"},
	{sorting.PriceTotalDesc, "Precio total: mayor a menor"},
	{sorting.FastestShipping, "Envío más rápido"},
	{sorting.BestPriceTime, "Mejor precio/tiempo"},
}

// tableColumns are the sortable headers of the table view.
var tableColumns = []struct{ Field, Label string }{
	{"title", "Título"},
	{"brand", "Marca"},
	{"marketplace", "Marketplace"},
	{"price_amount", "Precio"},
	{"shipping_cost", "Envío"},
	{"price_total", "Total"},
	{"shipping_time_days", "Días"},
	{"is_offer", "Oferta"},
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if rid, ok := c.Locals("requestid").(string); ok {
		data["RequestID"] = rid
	}
	return c.Render(tmpl, data)
}

// renderState renders the results page for st.
func renderState(c *fiber.Ctx, st services.State, brands []string) error {
	return render(c, "index", fiber.Map{
		"Products":     st.Visible(),
		"Count":        st.Count(),
		"Chips":        st.Chips(),
		"Err":          st.Err,
		"Filters":      st.Filters,
		"Sort":         st.Sort,
		"View":         string(st.View),
		"Brands":       brands,
		"Marketplaces": domain.Marketplaces(),
		"SortOptions":  sortOptions,
		"Columns":      tableColumns,
	})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}
