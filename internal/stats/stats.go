// Package stats keeps rolling latency windows for service operations.
package stats

import (
	"slices"
	"sort"
	"sync"
	"time"
)

type sample struct {
	at         time.Time
	durationMs int64
	failed     bool
}

// Snapshot aggregates the samples of one operation inside the window.
type Snapshot struct {
	Count  int     `json:"count"`
	Errors int     `json:"errors"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Window tracks one operation's recent latencies.
type Window struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
	now     func() time.Time
}

func NewWindow(maxAge time.Duration) *Window {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Window{
		samples: make([]sample, 0, 64),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Record adds one observation. Negative durations count as zero.
func (w *Window) Record(d time.Duration, failed bool) {
	ms := max(d.Milliseconds(), 0)

	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	w.pruneLocked(now)
	w.samples = append(w.samples, sample{at: now, durationMs: ms, failed: failed})
}

func (w *Window) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(w.now())
	if len(w.samples) == 0 {
		return Snapshot{}
	}

	values := make([]int64, 0, len(w.samples))
	var sum int64
	errs := 0
	for _, s := range w.samples {
		values = append(values, s.durationMs)
		sum += s.durationMs
		if s.failed {
			errs++
		}
	}
	slices.Sort(values)

	return Snapshot{
		Count:  len(values),
		Errors: errs,
		MinMs:  values[0],
		MaxMs:  values[len(values)-1],
		AvgMs:  float64(sum) / float64(len(values)),
		P50Ms:  percentile(values, 50),
		P95Ms:  percentile(values, 95),
		P99Ms:  percentile(values, 99),
	}
}

func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-w.maxAge)
	keep := w.samples[:0]
	for _, s := range w.samples {
		if !s.at.Before(cutoff) {
			keep = append(keep, s)
		}
	}
	w.samples = keep
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}
	index := float64(len(sorted)-1) * pct / 100
	lower := int(index)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(index-float64(lower))
}

// Registry holds one window per operation name.
type Registry struct {
	mu      sync.Mutex
	windows map[string]*Window
	maxAge  time.Duration
}

func NewRegistry(maxAge time.Duration) *Registry {
	return &Registry{windows: make(map[string]*Window), maxAge: maxAge}
}

// Window returns the window for op, creating it on first use.
func (r *Registry) Window(op string) *Window {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[op]
	if !ok {
		w = NewWindow(r.maxAge)
		r.windows[op] = w
	}
	return w
}

// Observe records the time elapsed since start.
func (r *Registry) Observe(op string, start time.Time, failed bool) {
	r.Window(op).Record(time.Since(start), failed)
}

// Snapshot returns every operation's aggregate keyed by name.
func (r *Registry) Snapshot() map[string]Snapshot {
	r.mu.Lock()
	names := make([]string, 0, len(r.windows))
	for name := range r.windows {
		names = append(names, name)
	}
	r.mu.Unlock()
	sort.Strings(names)

	out := make(map[string]Snapshot, len(names))
	for _, name := range names {
		out[name] = r.Window(name).Snapshot()
	}
	return out
}
