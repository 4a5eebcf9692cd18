package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"comparador/internal/cache"
	"comparador/internal/dataset"
	"comparador/internal/domain"
	"comparador/internal/filter"
	"comparador/internal/metrics"
	"comparador/internal/sorting"
)

// ErrNotLoaded is returned by reads before the first successful Load.
var ErrNotLoaded = errors.New("catalog not loaded")

type Snapshot struct {
	ID       uuid.UUID
	LoadedAt time.Time
	Products []*domain.Product
	Failures []*dataset.RetrievalError
}

// CatalogService owns the loaded product set and the single interactive
// State. Reads of Products are safe while a reload runs.
type CatalogService struct {
	Loader   *dataset.Loader
	Datasets []dataset.Dataset
	Cache    *cache.Payloads

	mu     sync.RWMutex
	loaded bool
	snap   Snapshot
	state  State
}

func NewCatalogService(loader *dataset.Loader, sets []dataset.Dataset, payloads *cache.Payloads) *CatalogService {
	return &CatalogService{Loader: loader, Datasets: sets, Cache: payloads, state: NewState(nil)}
}

// Load runs the loader and swaps in the result. The interactive State keeps
// its filters, sort and view.
func (s *CatalogService) Load(ctx context.Context) (Snapshot, error) {
	res, err := s.Loader.Load(ctx, s.Datasets)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{ID: res.SnapshotID, LoadedAt: res.LoadedAt, Products: res.Products, Failures: res.Failures}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	if s.loaded {
		s.state = s.state.WithRaw(snap.Products)
	} else {
		s.state = NewState(snap.Products)
		s.loaded = true
	}
	metrics.CatalogSize.Set(float64(len(snap.Products)))
	return snap, nil
}

// Reload drops cached remote payloads when purge is set, then loads again.
func (s *CatalogService) Reload(ctx context.Context, purge bool) (Snapshot, error) {
	if purge {
		if _, err := s.Cache.Invalidate(ctx); err != nil {
			return Snapshot{}, err
		}
	}
	return s.Load(ctx)
}

func (s *CatalogService) Snapshot() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return Snapshot{}, ErrNotLoaded
	}
	return s.snap, nil
}

func (s *CatalogService) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *CatalogService) update(fn func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	return s.state
}

// ApplyFilters re-filters the interactive State. The returned State is
// current even when err is a *filter.ValidationError.
func (s *CatalogService) ApplyFilters(spec filter.Spec) (State, error) {
	var err error
	st := s.update(func(cur State) State {
		var next State
		next, err = cur.WithFilters(spec)
		return next
	})
	countRejection(err)
	return st, err
}

func (s *CatalogService) SetSort(key sorting.Key) State {
	return s.update(func(cur State) State { return cur.WithSort(key) })
}

func (s *CatalogService) SetColumnSort(field string) State {
	return s.update(func(cur State) State { return cur.WithColumnSort(field) })
}

func (s *CatalogService) SetView(v View) State {
	return s.update(func(cur State) State { return cur.WithView(v) })
}

func (s *CatalogService) Clear() State {
	return s.update(func(cur State) State { return cur.Cleared() })
}

// Brands lists distinct brands of the loaded set.
func (s *CatalogService) Brands() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Brands(s.snap.Products)
}

// Query filters and sorts the loaded set without touching the interactive
// State.
func (s *CatalogService) Query(spec filter.Spec, key sorting.Key) ([]*domain.Product, error) {
	s.mu.RLock()
	products := s.snap.Products
	s.mu.RUnlock()

	out, err := filter.Apply(products, spec)
	if err != nil {
		countRejection(err)
		return nil, err
	}
	return sorting.Sort(out, key), nil
}

// Find returns the first product with the given marketplace and id.
func (s *CatalogService) Find(m domain.Marketplace, id string) (*domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.snap.Products {
		if p.Marketplace == m && p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func countRejection(err error) {
	var ve *filter.ValidationError
	if errors.As(err, &ve) {
		metrics.FilterRejections.WithLabelValues(ve.Field).Inc()
	}
}
