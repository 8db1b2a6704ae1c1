package metrics

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestHistogram_Summary(t *testing.T) {
	h := NewHistogram(10)
	if got := h.Summary(); got.Count != 0 || got.Mean != 0 {
		t.Errorf("empty Summary() = %+v, want zero", got)
	}

	for i := 1; i <= 5; i++ {
		h.Record(time.Duration(i) * time.Millisecond)
	}
	got := h.Summary()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"mean", got.Mean, 3},
		{"p50", got.P50, 3},
		{"p95", got.P95, 4.8},
		{"min", got.Min, 1},
		{"max", got.Max, 5},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if got.Count != 5 {
		t.Errorf("Count = %d, want 5", got.Count)
	}
}

func TestHistogram_OverwritesOldest(t *testing.T) {
	h := NewHistogram(3)
	for _, ms := range []int{100, 1, 2, 3} {
		h.Record(time.Duration(ms) * time.Millisecond)
	}
	got := h.Summary()
	if got.Count != 3 {
		t.Errorf("Count = %d, want 3", got.Count)
	}
	if got.Max != 3 {
		t.Errorf("Max = %v, want 3 (oldest sample dropped)", got.Max)
	}

	h.Reset()
	if got := h.Summary(); got.Count != 0 {
		t.Errorf("Count after Reset = %d, want 0", got.Count)
	}
}

func TestViewMetrics_GetStats(t *testing.T) {
	m := NewViewMetrics()
	start := m.startTime
	m.now = func() time.Time { return start.Add(90 * time.Second) }

	m.ObserveRender(2*time.Millisecond, nil)
	m.ObserveRender(0, errors.New("boom"))
	m.ObserveCacheHit()
	m.ObserveCacheHit()
	m.ObserveCacheHit()
	m.ObserveReload(40 * time.Millisecond)

	s := m.GetStats()
	if s.ViewsServed != 4 {
		t.Errorf("ViewsServed = %d, want 4", s.ViewsServed)
	}
	if s.RenderErrors != 1 {
		t.Errorf("RenderErrors = %d, want 1", s.RenderErrors)
	}
	if s.CacheHits != 3 || s.CacheMisses != 1 {
		t.Errorf("cache hits/misses = %d/%d, want 3/1", s.CacheHits, s.CacheMisses)
	}
	if s.CacheHitRate != 75 {
		t.Errorf("CacheHitRate = %v, want 75", s.CacheHitRate)
	}
	if s.RenderLatency.Count != 1 || s.ReloadLatency.Count != 1 {
		t.Errorf("latency counts = %d/%d, want 1/1", s.RenderLatency.Count, s.ReloadLatency.Count)
	}
	if s.Uptime != "1m30s" {
		t.Errorf("Uptime = %q, want 1m30s", s.Uptime)
	}

	m.Reset()
	s = m.GetStats()
	if s.ViewsServed != 0 || s.Reloads != 0 || s.RenderLatency.Count != 0 {
		t.Errorf("after Reset = %+v, want zeroed", s)
	}
}
