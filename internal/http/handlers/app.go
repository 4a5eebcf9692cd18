package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applog "comparador/internal/log"
)

// AppOptions tunes the middleware stack; zero values pick the defaults.
type AppOptions struct {
	// RateMax is the per-IP request budget per minute for page and API routes.
	RateMax int
}

// NewApp builds the fiber app with the shared middleware and error surface.
func NewApp(views *html.Engine, opts AppOptions) *fiber.App {
	if opts.RateMax <= 0 {
		opts.RateMax = 120
	}
	app := fiber.New(fiber.Config{
		Views:        views,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: errorHandler,
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(requestid.New())
	app.Use(accessLog)
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        opts.RateMax,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/healthz" || p == "/metrics" || strings.HasPrefix(p, "/static/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))
	return app
}

// Mount registers every route on app.
func Mount(app *fiber.App, d *Deps) {
	app.Get("/", d.PageHandler.Home)
	app.Get("/search", d.PageHandler.Search)
	app.Get("/clear", d.PageHandler.Clear)
	app.Get("/sort", d.PageHandler.Sort)
	app.Get("/sort/column/:field", d.PageHandler.SortColumn)
	app.Get("/view", d.PageHandler.View)
	app.Get("/export", d.PageHandler.Export)

	api := app.Group("/api/v1")
	api.Get("/products", d.APIHandler.Products)
	api.Get("/products/:marketplace/:id", d.APIHandler.Product)
	api.Get("/brands", d.APIHandler.Brands)
	api.Get("/export", d.APIHandler.Export)
	api.Post("/reload", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.reload.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many reloads"})
		},
	}), RequireReloadToken(d.ReloadHash), d.ReloadHandler.Reload)

	app.Get("/healthz", d.APIHandler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return notFound(c, "Página no encontrada")
	})
}

func accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	applog.Info(c, "http.access", map[string]any{"latency_ms": time.Since(start).Milliseconds()})
	return err
}

// errorHandler logs and shows a friendly message without internals.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < 500 {
		code = fe.Code
	}
	applog.Error(c, "server.error", err, map[string]any{"code": code})
	msg := "Algo salió mal. Inténtalo de nuevo."
	if code < 500 {
		msg = statusMessage(code)
	}
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

func statusMessage(code int) string {
	switch code {
	case fiber.StatusNotFound:
		return "Página no encontrada"
	case fiber.StatusMethodNotAllowed:
		return "Método no permitido"
	case fiber.StatusRequestEntityTooLarge:
		return "Petición demasiado grande"
	}
	return "Petición no válida"
}
