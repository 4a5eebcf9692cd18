package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"comparador/internal/config"
	"comparador/internal/dataset"
	"comparador/internal/domain"
	"comparador/internal/http/handlers"
	applog "comparador/internal/log"
	"comparador/internal/services"
)

type memSource []domain.RawRecord

func (m memSource) Fetch(context.Context) ([]domain.RawRecord, error) { return m, nil }

func testDatasets() []dataset.Dataset {
	return []dataset.Dataset{
		{Name: "ali", Tag: "aliexpress", Source: memSource{
			{"id": "A1", "title": "Auriculares Bluetooth", "brand": "Xiaomi", "price": "$19.99", "shipping_cost": "5", "shipping_time_days": float64(12), "is_offer": true},
			{"id": "A2", "title": "Cargador \"rápido\"", "brand": "Baseus", "price": "9.50", "shipping_time_days": float64(15)},
		}},
		{Name: "temu", Tag: "temu", Source: memSource{
			{"id": "T1", "title": "Lámpara LED", "brand": "Xiaomi", "price": "40", "delivery_days": "8"},
		}},
		{Name: "shop", Tag: "shopify", Source: memSource{
			{"handle": "taza", "title": "Taza", "vendor": "Mugs Co", "variant_price": "15", "shipping_days": "5"},
		}},
	}
}

// newTestApp wires the real middleware and routes over an in-memory catalog.
func newTestApp(t *testing.T, cfg config.Config) (*fiber.App, *services.CatalogService) {
	t.Helper()
	catalog := services.NewCatalogService(&dataset.Loader{Logger: zap.NewNop()}, testDatasets(), nil)
	if _, err := catalog.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	app := handlers.NewApp(handlers.NewViews("../../web/templates"), handlers.AppOptions{RateMax: 1000})
	handlers.Mount(app, handlers.NewDeps(cfg, catalog))
	return app, catalog
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, string) {
	t.Helper()
	return do(t, app, httptest.NewRequest(http.MethodGet, target, nil))
}

func captureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	t.Cleanup(applog.SetLogger(zap.New(core)))
	return logs
}
