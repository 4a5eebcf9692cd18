package dataset

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/jmoiron/sqlx"
	"golang.org/x/time/rate"

	"comparador/internal/cache"
	"comparador/internal/config"
	"comparador/internal/repos"
)

// Builder turns manifest entries into Datasets. Database handles are opened
// on first fetch, once per distinct DSN, and kept until Close.
type Builder struct {
	Client     *http.Client
	Limiter    *rate.Limiter
	Cache      *cache.Payloads
	DefaultDSN string

	mu  sync.Mutex
	dbs map[string]*sqlx.DB
}

// Build never touches the network or a database; retrieval errors surface
// from Fetch.
func (b *Builder) Build(ctx context.Context, cfgs []config.DatasetConfig) ([]Dataset, error) {
	out := make([]Dataset, 0, len(cfgs))
	for _, c := range cfgs {
		ds := Dataset{Name: c.Name, Tag: c.Tag}
		switch {
		case c.Path != "":
			ds.Source = FileSource{Path: c.Path, Format: Format(c.Format)}
		case c.URL != "":
			ds.Source = HTTPSource{URL: c.URL, Format: Format(c.Format), Client: b.Client, Limiter: b.Limiter, Cache: b.Cache}
		case c.Table != "":
			dsn := c.DSN
			ds.Source = SQLSource{Table: c.Table, Open: func(ctx context.Context) (*repos.RawRepo, error) {
				db, err := b.db(ctx, dsn)
				if err != nil {
					return nil, err
				}
				return repos.NewRawRepo(db), nil
			}}
		default:
			return nil, fmt.Errorf("dataset %s: no path, url or table", c.Name)
		}
		out = append(out, ds)
	}
	return out, nil
}

func (b *Builder) db(ctx context.Context, dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		dsn = b.DefaultDSN
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if db, ok := b.dbs[dsn]; ok {
		return db, nil
	}
	db, err := repos.OpenDB(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if b.dbs == nil {
		b.dbs = map[string]*sqlx.DB{}
	}
	b.dbs[dsn] = db
	return db, nil
}

// Close releases every database handle opened by Build.
func (b *Builder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var errs []error
	for dsn, db := range b.dbs {
		errs = append(errs, db.Close())
		delete(b.dbs, dsn)
	}
	return errors.Join(errs...)
}
