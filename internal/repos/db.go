package repos

import (
	"context"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Driver picks the database/sql driver for a DSN: postgres URLs go to pgx,
// everything else is a sqlite file or ":memory:".
func Driver(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx"
	}
	return "sqlite"
}

func OpenDB(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(Driver(dsn), dsn)
	if err != nil {
		return nil, err
	}
	if db.DriverName() == "sqlite" {
		// one connection so ":memory:" is a single database
		db.SetMaxOpenConns(1)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
