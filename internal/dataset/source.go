package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"golang.org/x/time/rate"

	"comparador/internal/cache"
	"comparador/internal/domain"
	"comparador/internal/metrics"
	"comparador/internal/repos"
)

// Source retrieves the raw records of one dataset.
type Source interface {
	Fetch(ctx context.Context) ([]domain.RawRecord, error)
}

// maxPayload caps a single file or response body.
const maxPayload = 64 << 20

// FileSource reads a local JSON or delimited file. An empty Format is
// inferred from the extension.
type FileSource struct {
	Path   string
	Format Format
}

func (s FileSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	f := s.Format
	if f == "" {
		f = InferFormat(s.Path)
	}
	if f == "" {
		return nil, fmt.Errorf("%s: cannot infer format", s.Path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	data, err := io.ReadAll(io.LimitReader(fh, maxPayload))
	if err != nil {
		return nil, err
	}
	return Decode(f, data)
}

// HTTPSource GETs a remote payload. Limiter, when set, throttles requests
// across every source sharing it; Cache, when set, serves repeat loads.
type HTTPSource struct {
	URL     string
	Format  Format
	Client  *http.Client
	Limiter *rate.Limiter
	Cache   *cache.Payloads
}

func (s HTTPSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	f := s.Format
	if f == "" {
		f = InferFormat(s.URL)
	}
	if f == "" {
		f = FormatJSON
	}

	body, ok, err := s.Cache.Get(ctx, s.URL)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
	case ok:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return Decode(f, body)
	case s.Cache != nil:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	body, err = s.get(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := Decode(f, body)
	if err != nil {
		return nil, err
	}
	// cache only payloads that decoded
	_ = s.Cache.Set(ctx, s.URL, body)
	return recs, nil
}

func (s HTTPSource) get(ctx context.Context) ([]byte, error) {
	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: status %d", s.URL, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPayload))
}

// SQLSource reads every row of one table. When Repo is nil, Open is called on
// each Fetch so an unreachable database fails only this source.
type SQLSource struct {
	Repo  *repos.RawRepo
	Open  func(ctx context.Context) (*repos.RawRepo, error)
	Table string
}

func (s SQLSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	repo := s.Repo
	if repo == nil {
		if s.Open == nil {
			return nil, fmt.Errorf("table %s: no database", s.Table)
		}
		var err error
		if repo, err = s.Open(ctx); err != nil {
			return nil, fmt.Errorf("table %s: %w", s.Table, err)
		}
	}
	return repo.All(ctx, s.Table)
}
