package source

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// DefaultTTL is how long a fetched dataset stays fresh
const DefaultTTL = 5 * time.Minute

// Data holds the raw rows of all datasets
type Data struct {
	Orders  []domain.Row
	Payouts []domain.Row
	Staff   []domain.Row
}

// EntryStats describes the cache state of one dataset
type EntryStats struct {
	Dataset   Dataset   `json:"dataset"`
	Cached    bool      `json:"cached"`
	Fresh     bool      `json:"fresh"`
	Rows      int       `json:"rows"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

type entry struct {
	rows      []domain.Row
	fetchedAt time.Time
}

// Cache keeps the last successful fetch of every dataset for a TTL. A failed
// fetch is answered with the previous rows, or an empty slice when there are
// none, so callers never see source errors.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	mu       sync.Mutex
	entries  map[Dataset]entry
	lastErrs map[Dataset]string
	keyLocks map[Dataset]*sync.Mutex
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithClock replaces time.Now
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger used for fetch failures
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) { c.logger = logger }
}

// WithMetrics records hits, misses and failures
func WithMetrics(m *Metrics) CacheOption {
	return func(c *Cache) { c.metrics = m }
}

// WithTracer traces remote fetches
func WithTracer(t trace.Tracer) CacheOption {
	return func(c *Cache) { c.tracer = t }
}

// NewCache creates a cache in front of fetcher. ttl <= 0 means DefaultTTL.
func NewCache(fetcher Fetcher, ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		fetcher:  fetcher,
		ttl:      ttl,
		now:      time.Now,
		logger:   slog.Default(),
		metrics:  NewMetrics(nil),
		tracer:   noop.NewTracerProvider().Tracer("source"),
		entries:  make(map[Dataset]entry),
		lastErrs: make(map[Dataset]string),
		keyLocks: make(map[Dataset]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "source_cache"))
	return c
}

// TTL returns the freshness window
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Fetch returns the rows of ds, going to the source only when the cached entry
// is missing or older than the TTL. The returned rows are copies.
func (c *Cache) Fetch(ctx context.Context, ds Dataset) []domain.Row {
	lock := c.keyLock(ds)
	lock.Lock()
	defer lock.Unlock()

	label := string(ds)
	previous, cached := c.entry(ds)
	if cached && c.now().Sub(previous.fetchedAt) < c.ttl {
		c.metrics.Hits.WithLabelValues(label).Inc()
		return domain.CloneRows(previous.rows)
	}
	c.metrics.Misses.WithLabelValues(label).Inc()

	ctx, span := c.tracer.Start(ctx, "source.fetch", trace.WithAttributes(attribute.String("dataset", label)))
	defer span.End()

	rows, err := c.fetcher.Fetch(ctx, ds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		c.metrics.Failures.WithLabelValues(label).Inc()
		c.setError(ds, err)

		if cached {
			c.metrics.StaleServes.WithLabelValues(label).Inc()
			c.logger.WarnContext(ctx, "fetch failed, serving cached rows",
				slog.String("dataset", label),
				slog.Time("fetched_at", previous.fetchedAt),
				slog.String("error", err.Error()))
			return domain.CloneRows(previous.rows)
		}

		c.logger.WarnContext(ctx, "fetch failed, no cached rows",
			slog.String("dataset", label),
			slog.String("error", err.Error()))
		return []domain.Row{}
	}

	stored := domain.CloneRows(rows)
	c.mu.Lock()
	c.entries[ds] = entry{rows: stored, fetchedAt: c.now()}
	delete(c.lastErrs, ds)
	c.mu.Unlock()

	c.metrics.Rows.WithLabelValues(label).Set(float64(len(stored)))
	span.SetAttributes(attribute.Int("rows", len(stored)))
	c.logger.DebugContext(ctx, "dataset fetched", slog.String("dataset", label), slog.Int("rows", len(stored)))

	return domain.CloneRows(stored)
}

// FetchAll fetches every dataset concurrently. Each dataset falls back on its
// own; a failure never cancels the others.
func (c *Cache) FetchAll(ctx context.Context) Data {
	var (
		g    errgroup.Group
		data Data
	)

	targets := map[Dataset]*[]domain.Row{
		DatasetOrders:  &data.Orders,
		DatasetPayouts: &data.Payouts,
		DatasetStaff:   &data.Staff,
	}
	for ds, dst := range targets {
		g.Go(func() error {
			*dst = c.Fetch(ctx, ds)
			return nil
		})
	}
	_ = g.Wait()

	return data
}

// Refresh discards every entry and fetches all datasets again
func (c *Cache) Refresh(ctx context.Context) Data {
	c.Clear()
	return c.FetchAll(ctx)
}

// Clear discards every cached entry
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Dataset]entry)
	for _, ds := range Datasets() {
		c.metrics.Rows.WithLabelValues(string(ds)).Set(0)
	}
}

// Stats reports the state of every dataset
func (c *Cache) Stats() []EntryStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	stats := make([]EntryStats, 0, len(Datasets()))
	for _, ds := range Datasets() {
		s := EntryStats{Dataset: ds, LastError: c.lastErrs[ds]}
		if e, ok := c.entries[ds]; ok {
			s.Cached = true
			s.Rows = len(e.rows)
			s.FetchedAt = e.fetchedAt
			s.Fresh = now.Sub(e.fetchedAt) < c.ttl
		}
		stats = append(stats, s)
	}
	return stats
}

func (c *Cache) entry(ds Dataset) (entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[ds]
	return e, ok
}

func (c *Cache) setError(ds Dataset, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErrs[ds] = err.Error()
}

// keyLock returns the mutex serializing fetches of ds
func (c *Cache) keyLock(ds Dataset) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.keyLocks[ds]
	if !ok {
		lock = &sync.Mutex{}
		c.keyLocks[ds] = lock
	}
	return lock
}
