package repos

import (
	"context"
	"testing"

	"comparador/internal/domain"
)

func newTestDB(t *testing.T) *RawRepo {
	t.Helper()
	db, err := OpenDB(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewRawRepo(db)
}

func TestDriver(t *testing.T) {
	if got := Driver("postgres://u:p@localhost/db"); got != "pgx" {
		t.Fatalf("postgres dsn -> %s", got)
	}
	if got := Driver("comparador.db"); got != "sqlite" {
		t.Fatalf("file dsn -> %s", got)
	}
}

func TestImportThenAllRoundTrip(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	n, err := repo.Import(ctx, "shop_products", []domain.RawRecord{
		{"handle": "blue-mug", "price": float64(12), "vendor": "Mugs Co"},
		{"handle": "red-mug", "price": "9.5", "on_sale": true},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d rows", n)
	}

	got, err := repo.All(ctx, "shop_products")
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 rows, got %d", len(got))
	}
	if got[0]["handle"] != "blue-mug" || got[0]["price"] != "12" {
		t.Fatalf("row 0 = %#v", got[0])
	}
	if got[1]["vendor"] != nil {
		t.Fatalf("missing key should read back as NULL, got %#v", got[1]["vendor"])
	}
	if got[1]["on_sale"] != "true" {
		t.Fatalf("on_sale = %#v", got[1]["on_sale"])
	}

	// re-import replaces
	if _, err := repo.Import(ctx, "shop_products", []domain.RawRecord{{"handle": "only"}}); err != nil {
		t.Fatalf("reimport: %v", err)
	}
	got, _ = repo.All(ctx, "shop_products")
	if len(got) != 1 {
		t.Fatalf("reimport kept %d rows", len(got))
	}
}

func TestRejectsUnsafeTableNames(t *testing.T) {
	repo := newTestDB(t)
	if _, err := repo.All(context.Background(), "x; DROP TABLE y"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := repo.Import(context.Background(), "1bad", []domain.RawRecord{{"a": "b"}}); err == nil {
		t.Fatal("expected error")
	}
}
