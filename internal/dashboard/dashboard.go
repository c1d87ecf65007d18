// Package dashboard ties the loader, filter, stats and insight packages
// into a reloadable session shared by the terminal and HTTP front ends.
package dashboard

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/verte-zerg/empdash/internal/dataset"
	"github.com/verte-zerg/empdash/internal/export"
	"github.com/verte-zerg/empdash/internal/filter"
	"github.com/verte-zerg/empdash/internal/insight"
	"github.com/verte-zerg/empdash/internal/model"
	"github.com/verte-zerg/empdash/internal/stats"
	"github.com/verte-zerg/empdash/internal/store"
)

// ErrNotLoaded is returned while no dataset has been loaded successfully.
var ErrNotLoaded = errors.New("dataset is not loaded")

// LoadFunc reads a dataset source.
type LoadFunc func(context.Context, dataset.Source) (model.Table, error)

// Cache memoizes loaded tables per source identity.
type Cache struct {
	mu      sync.Mutex
	load    LoadFunc
	entries map[string]model.Table
}

// NewCache returns a cache backed by dataset.Load.
func NewCache() *Cache {
	return newCache(dataset.Load)
}

func newCache(load LoadFunc) *Cache {
	return &Cache{load: load, entries: map[string]model.Table{}}
}

// Load returns the cached table for src, reading it on first use.
// Failed loads are not cached.
func (c *Cache) Load(ctx context.Context, src dataset.Source) (model.Table, error) {
	key := cacheKey(src)
	c.mu.Lock()
	defer c.mu.Unlock()
	if tbl, ok := c.entries[key]; ok {
		return tbl, nil
	}
	tbl, err := c.load(ctx, src)
	if err != nil {
		return model.Table{}, err
	}
	c.entries[key] = tbl
	return tbl, nil
}

// Invalidate drops the cached table for src.
func (c *Cache) Invalidate(src dataset.Source) {
	c.mu.Lock()
	delete(c.entries, cacheKey(src))
	c.mu.Unlock()
}

func cacheKey(src dataset.Source) string {
	path := filepath.Clean(src.Path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	table := ""
	if src.IsSQLite() {
		table = cmp.Or(src.SQLiteTable, store.DefaultTable)
	}
	return path + "#" + table
}

type snapshot struct {
	table  model.Table
	bounds model.Bounds
}

// View is one evaluated filter selection.
type View struct {
	Spec     model.FilterSpec
	Table    model.Table
	Result   model.AggregateResult
	Insights []insight.Insight
	Warning  string
}

// Session holds the current table of one source. Reloads replace the
// table and its bounds together; readers never see a partial swap.
type Session struct {
	source    dataset.Source
	cache     *Cache
	generator *insight.Generator

	current atomic.Pointer[snapshot]
	lastErr atomic.Pointer[error]
}

// NewSession creates an unloaded session. A nil cache gets a private one.
func NewSession(src dataset.Source, cache *Cache, currency string) *Session {
	if cache == nil {
		cache = NewCache()
	}
	return &Session{source: src, cache: cache, generator: insight.NewGenerator(currency)}
}

// Source returns the dataset source of the session.
func (s *Session) Source() dataset.Source {
	return s.source
}

// Currency returns the currency symbol used for salary figures.
func (s *Session) Currency() string {
	return s.generator.Currency
}

// Load reads the source through the cache.
func (s *Session) Load(ctx context.Context) error {
	tbl, err := s.cache.Load(ctx, s.source)
	if err != nil {
		s.lastErr.Store(&err)
		return err
	}
	s.current.Store(&snapshot{table: tbl, bounds: stats.ObservedBounds(tbl)})
	s.lastErr.Store(nil)
	return nil
}

// Reload drops the cached table and reads the source again. On failure
// the previously loaded table stays current.
func (s *Session) Reload(ctx context.Context) error {
	s.cache.Invalidate(s.source)
	return s.Load(ctx)
}

// Err returns the error of the most recent load, if it failed.
func (s *Session) Err() error {
	if p := s.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Table returns the loaded table.
func (s *Session) Table() (model.Table, bool) {
	snap := s.current.Load()
	if snap == nil {
		return model.Table{}, false
	}
	return snap.table, true
}

// Bounds returns the observed bounds of the loaded table.
func (s *Session) Bounds() (model.Bounds, bool) {
	snap := s.current.Load()
	if snap == nil {
		return model.Bounds{}, false
	}
	return snap.bounds, true
}

// DefaultSpec selects every record of the loaded table.
func (s *Session) DefaultSpec() (model.FilterSpec, error) {
	b, ok := s.Bounds()
	if !ok {
		return model.FilterSpec{}, s.notLoaded()
	}
	return filter.Default(b), nil
}

// Evaluate filters the loaded table and computes its summary and
// insights. Every call recomputes from the current table.
func (s *Session) Evaluate(spec model.FilterSpec) (View, error) {
	snap := s.current.Load()
	if snap == nil {
		return View{}, s.notLoaded()
	}
	spec, warn := filter.Normalize(spec, snap.bounds)
	view := View{Spec: spec, Table: filter.Apply(snap.table, spec)}
	view.Result = stats.Summarize(view.Table)
	view.Insights = slices.Collect(s.generator.Generate(view.Result))
	if warn != nil {
		view.Warning = warn.Error()
	}
	return view, nil
}

// Export serializes the filtered view as a workbook.
func (s *Session) Export(spec model.FilterSpec) ([]byte, error) {
	view, err := s.Evaluate(spec)
	if err != nil {
		return nil, err
	}
	data, err := export.Serialize(view.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to export view: %w", err)
	}
	return data, nil
}

func (s *Session) notLoaded() error {
	if err := s.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}
	return ErrNotLoaded
}
