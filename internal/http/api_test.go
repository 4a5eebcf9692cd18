package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"comparador/internal/config"
	"comparador/internal/domain"
)

type listResponse struct {
	Items []domain.Product `json:"items"`
	Count int              `json:"count"`
}

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return v
}

func TestAPIProductsDefaultsToAllMarketplaces(t *testing.T) {
	app, catalog := newTestApp(t, config.Config{})
	resp, body := get(t, app, "/api/v1/products?sort=price_total_asc")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	got := decode[listResponse](t, body)
	if got.Count != 4 || got.Items[0].ID != "A2" || got.Items[3].ID != "T1" {
		t.Fatalf("unexpected list: %+v", got)
	}
	if got.Items[0].PriceTotal != 9.5 {
		t.Fatalf("price_total = %v", got.Items[0].PriceTotal)
	}

	// stateless: the page state is untouched
	get(t, app, "/api/v1/products?marketplaces=temu")
	if catalog.State().Count() != 4 {
		t.Fatal("API query changed the interactive state")
	}
}

func TestAPIProductsValidation(t *testing.T) {
	app, _ := newTestApp(t, config.Config{})
	cases := []struct {
		query, field, msg string
	}{
		{"priceMin=abc", "priceMin", "Precio mínimo no válido"},
		{"priceMax=1,5", "priceMax", "Precio máximo no válido"},
		{"priceMin=50&priceMax=10", "priceRange", "Rango precio inválido: min > max"},
		{"maxShippingDays=x", "maxShippingDays", "Días de envío no válidos"},
	}
	for _, tc := range cases {
		resp, body := get(t, app, "/api/v1/products?"+tc.query)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status %d", tc.query, resp.StatusCode)
		}
		got := decode[map[string]string](t, body)
		if got["error"] != tc.msg || got["field"] != tc.field {
			t.Fatalf("%s: %v", tc.query, got)
		}
	}

	if resp, _ := get(t, app, "/api/v1/products?sort=random"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown sort: %d", resp.StatusCode)
	}
}

func TestAPIProductLookup(t *testing.T) {
	app, _ := newTestApp(t, config.Config{})

	resp, body := get(t, app, "/api/v1/products/shopify/taza")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	p := decode[domain.Product](t, body)
	if p.Brand != "Mugs Co" || p.ShippingTimeDays != 5 || p.URL != "https://example.com/products/taza" {
		t.Fatalf("product = %+v", p)
	}

	for _, target := range []string{"/api/v1/products/temu/taza", "/api/v1/products/ebay/taza", "/api/v1/products/temu/..%2f"} {
		if resp, _ := get(t, app, target); resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: status %d", target, resp.StatusCode)
		}
	}
}

func TestAPIBrands(t *testing.T) {
	app, _ := newTestApp(t, config.Config{})
	_, body := get(t, app, "/api/v1/brands")
	got := decode[map[string][]string](t, body)
	want := []string{"Baseus", "Mugs Co", "Xiaomi"}
	if strings.Join(got["brands"], "|") != strings.Join(want, "|") {
		t.Fatalf("brands = %v", got["brands"])
	}
}

func TestAPIExport(t *testing.T) {
	app, _ := newTestApp(t, config.Config{})

	resp, body := get(t, app, "/api/v1/export?format=json&marketplaces=temu")
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content-type %q", ct)
	}
	rows := decode[[]map[string]any](t, body)
	if len(rows) != 1 || rows[0]["id"] != "T1" || len(rows[0]) != 7 {
		t.Fatalf("rows = %v", rows)
	}

	resp, body = get(t, app, "/api/v1/export?marketplaces=temu&name=lamparas")
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "lamparas.csv") {
		t.Fatalf("content-disposition %q", cd)
	}
	if !strings.HasPrefix(body, `"id","title"`) {
		t.Fatalf("csv body %q", body)
	}

	// nothing matches: empty CSV, not even a header
	_, body = get(t, app, "/api/v1/export?q=zzzz")
	if body != "" {
		t.Fatalf("expected empty export, got %q", body)
	}
}

func TestReloadRequiresToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	app, catalog := newTestApp(t, config.Config{ReloadTokenHash: string(hash)})
	before, _ := catalog.Snapshot()
	logs := captureLogs(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil)
	if resp, _ := do(t, app, req); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	if resp, _ := do(t, app, req); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("bad token: %d", resp.StatusCode)
	}
	if logs.FilterMessage("access.denied.reload").Len() != 2 {
		t.Fatal("denials not logged")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/reload?purge=1", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, body := do(t, app, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reload: %d %s", resp.StatusCode, body)
	}
	after, _ := catalog.Snapshot()
	if after.ID == before.ID {
		t.Fatal("snapshot not replaced")
	}
	if logs.FilterMessage("catalog.reload").Len() != 1 {
		t.Fatal("reload not audited")
	}
}

func TestReloadDisabledWithoutHash(t *testing.T) {
	app, _ := newTestApp(t, config.Config{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil)
	req.Header.Set("Authorization", "Bearer anything")
	if resp, _ := do(t, app, req); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app, catalog := newTestApp(t, config.Config{})
	snap, _ := catalog.Snapshot()

	_, body := get(t, app, "/healthz")
	h := decode[map[string]any](t, body)
	if h["ok"] != true || h["snapshot"] != snap.ID.String() || h["products"] != float64(4) {
		t.Fatalf("health = %v", h)
	}

	resp, body := get(t, app, "/metrics")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "comparador_records_loaded_total") {
		t.Fatalf("metrics status %d", resp.StatusCode)
	}
}

func TestUnknownAPIRouteIsJSON404(t *testing.T) {
	app, _ := newTestApp(t, config.Config{})
	resp, body := get(t, app, "/api/v1/nope")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, `"error"`) {
		t.Fatalf("status %d body %s", resp.StatusCode, body)
	}
}
