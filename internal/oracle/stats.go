package oracle

import (
	"sort"
	"sync"
	"time"
)

// Stats keeps a rolling window of oracle call outcomes for the stats
// endpoint. Samples age out after maxAge; aggregates are computed on demand
// from whatever remains, so a quiet hour naturally drains to zero.
type Stats struct {
	mu     sync.Mutex
	maxAge time.Duration
	calls  []callSample
}

type callSample struct {
	at     time.Time
	ms     int64
	failed bool
}

// StatsSnapshot is a point-in-time aggregate of recent oracle calls. Count
// includes failed attempts; Failures counts them separately so retry storms
// are visible.
type StatsSnapshot struct {
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{maxAge: maxAge}
}

// Record adds one call attempt. Every HTTP round trip counts, including
// attempts a retry later papered over.
func (s *Stats) Record(durationMs int64, failed bool) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(now)
	s.calls = append(s.calls, callSample{at: now, ms: durationMs, failed: failed})
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(time.Now())
	if len(s.calls) == 0 {
		return StatsSnapshot{}
	}

	durations := make([]int64, 0, len(s.calls))
	var sum int64
	failures := 0
	for _, c := range s.calls {
		durations = append(durations, c.ms)
		sum += c.ms
		if c.failed {
			failures++
		}
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	return StatsSnapshot{
		Count:    len(durations),
		Failures: failures,
		MinMs:    durations[0],
		MaxMs:    durations[len(durations)-1],
		AvgMs:    float64(sum) / float64(len(durations)),
		P50Ms:    percentile(durations, 50),
		P95Ms:    percentile(durations, 95),
		P99Ms:    percentile(durations, 99),
	}
}

// prune drops samples older than the window. Caller holds the lock.
func (s *Stats) prune(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	kept := s.calls[:0]
	for _, c := range s.calls {
		if !c.at.Before(cutoff) {
			kept = append(kept, c)
		}
	}
	s.calls = kept
}

// percentile interpolates linearly between the two nearest sorted samples.
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

	pos := (float64(len(sorted)-1) * pct) / 100.0
	lower := int(pos)
	upper := lower + 1
	if upper >= len(sorted) {
		return float64(sorted[lower])
	}
	frac := pos - float64(lower)
	return float64(sorted[lower]) + (float64(sorted[upper])-float64(sorted[lower]))*frac
}
