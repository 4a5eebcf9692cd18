// Package dataset retrieves the configured sources and turns them into one
// ordered product set.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"comparador/internal/domain"
	applog "comparador/internal/log"
	"comparador/internal/metrics"
	"comparador/internal/normalize"
)

// Dataset binds a source to the marketplace tag its records are normalized with.
type Dataset struct {
	Name   string
	Tag    string
	Source Source
}

// RetrievalError reports a dataset that could not be loaded. Loading carries
// on without it.
type RetrievalError struct {
	Dataset string
	Tag     string
	Err     error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("dataset %s (%s): %v", e.Dataset, e.Tag, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Result is one load: products in dataset declaration order, then record
// order within each dataset.
type Result struct {
	SnapshotID uuid.UUID
	LoadedAt   time.Time
	Products   []*domain.Product
	Failures   []*RetrievalError
}

type Loader struct {
	Normalizer *normalize.Normalizer
	// Concurrency bounds parallel retrievals; 1 loads one dataset at a time.
	Concurrency int
	// Timeout applies to each retrieval separately; zero means none.
	Timeout time.Duration
	Logger  *zap.Logger
}

var errNoSource = errors.New("no source configured")

type slot struct {
	products []*domain.Product
	err      error
}

// Load retrieves every dataset, normalizes and enriches their records and
// merges them in declaration order. Failing datasets land in
// Result.Failures. The only error returned is the cancellation of ctx.
func (l *Loader) Load(ctx context.Context, sets []Dataset) (Result, error) {
	start := time.Now()
	logger := l.Logger
	if logger == nil {
		logger = applog.L()
	}
	n := l.Normalizer
	if n == nil {
		n = &normalize.Normalizer{}
	}
	limit := l.Concurrency
	if limit < 1 {
		limit = 1
	}

	slots := make([]slot, len(sets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, ds := range sets {
		g.Go(func() error {
			slots[i] = l.retrieve(gctx, n, ds)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{SnapshotID: uuid.New(), LoadedAt: time.Now().UTC(), Products: []*domain.Product{}}
	for i, s := range slots {
		ds := sets[i]
		if s.err != nil {
			rerr := &RetrievalError{Dataset: ds.Name, Tag: ds.Tag, Err: s.err}
			res.Failures = append(res.Failures, rerr)
			metrics.SourceFailures.WithLabelValues(ds.Name).Inc()
			logger.Warn("dataset.load.fail", zap.String("dataset", ds.Name), zap.String("tag", ds.Tag), zap.Error(s.err))
			continue
		}
		counts := map[domain.Marketplace]int{}
		for _, p := range s.products {
			counts[p.Marketplace]++
		}
		for m, c := range counts {
			metrics.RecordsLoaded.WithLabelValues(string(m), ds.Name).Add(float64(c))
		}
		logger.Info("dataset.load.ok", zap.String("dataset", ds.Name), zap.String("tag", ds.Tag), zap.Int("records", len(s.products)))
		res.Products = append(res.Products, s.products...)
	}

	elapsed := time.Since(start)
	metrics.LoadDuration.Observe(elapsed.Seconds())
	logger.Info("dataset.load.done",
		zap.String("snapshot", res.SnapshotID.String()),
		zap.Int("products", len(res.Products)),
		zap.Int("failures", len(res.Failures)),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

func (l *Loader) retrieve(ctx context.Context, n *normalize.Normalizer, ds Dataset) slot {
	if ds.Source == nil {
		return slot{err: errNoSource}
	}
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	raws, err := ds.Source.Fetch(ctx)
	if err != nil {
		return slot{err: err}
	}
	out := make([]*domain.Product, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.Normalize(ds.Tag, raw).Enrich())
	}
	return slot{products: out}
}
