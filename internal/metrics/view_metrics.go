// Package metrics records in-process counters and latencies for the
// analytics API.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// ViewMetrics tracks rendering, caching and reload activity.
type ViewMetrics struct {
	RenderLatency *Histogram
	ReloadLatency *Histogram

	ViewsServed  atomic.Uint64
	RenderErrors atomic.Uint64
	CacheHits    atomic.Uint64
	CacheMisses  atomic.Uint64
	Reloads      atomic.Uint64

	mu        sync.RWMutex
	startTime time.Time
	now       func() time.Time
}

// NewViewMetrics creates a new metrics collector.
func NewViewMetrics() *ViewMetrics {
	return &ViewMetrics{
		RenderLatency: NewHistogram(defaultHistogramSize),
		ReloadLatency: NewHistogram(256),
		startTime:     time.Now(),
		now:           time.Now,
	}
}

// ObserveRender records one rendered view. Cache hits skip rendering and
// are counted with ObserveCacheHit instead.
func (m *ViewMetrics) ObserveRender(d time.Duration, err error) {
	if err != nil {
		m.RenderErrors.Add(1)
		return
	}
	m.ViewsServed.Add(1)
	m.CacheMisses.Add(1)
	m.RenderLatency.Record(d)
}

// ObserveCacheHit records a view served from the cache.
func (m *ViewMetrics) ObserveCacheHit() {
	m.ViewsServed.Add(1)
	m.CacheHits.Add(1)
}

// ObserveReload records a dataset swap and how long the load took.
func (m *ViewMetrics) ObserveReload(d time.Duration) {
	m.Reloads.Add(1)
	if d > 0 {
		m.ReloadLatency.Record(d)
	}
}

// Stats is a point-in-time copy of the metrics.
type Stats struct {
	RenderLatency LatencyStats `json:"render_latency"`
	ReloadLatency LatencyStats `json:"reload_latency"`

	ViewsServed  uint64  `json:"views_served"`
	RenderErrors uint64  `json:"render_errors"`
	CacheHits    uint64  `json:"cache_hits"`
	CacheMisses  uint64  `json:"cache_misses"`
	CacheHitRate float64 `json:"cache_hit_rate"` // percentage
	Reloads      uint64  `json:"reloads"`

	Uptime string `json:"uptime"`
}

// LatencyStats summarizes a histogram, in milliseconds.
type LatencyStats struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// GetStats returns a snapshot of the current statistics.
func (m *ViewMetrics) GetStats() *Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hits := m.CacheHits.Load()
	misses := m.CacheMisses.Load()
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses) * 100
	}

	return &Stats{
		RenderLatency: m.RenderLatency.Summary(),
		ReloadLatency: m.ReloadLatency.Summary(),
		ViewsServed:   m.ViewsServed.Load(),
		RenderErrors:  m.RenderErrors.Load(),
		CacheHits:     hits,
		CacheMisses:   misses,
		CacheHitRate:  hitRate,
		Reloads:       m.Reloads.Load(),
		Uptime:        m.now().Sub(m.startTime).Round(time.Second).String(),
	}
}

// Reset clears all metrics.
func (m *ViewMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RenderLatency.Reset()
	m.ReloadLatency.Reset()
	m.ViewsServed.Store(0)
	m.RenderErrors.Store(0)
	m.CacheHits.Store(0)
	m.CacheMisses.Store(0)
	m.Reloads.Store(0)
	m.startTime = m.now()
}
