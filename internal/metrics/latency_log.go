// Package metrics records per-call latencies and summarises a run.
package metrics

import (
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram bounds, in microseconds: 1µs to 1 hour, 3 significant figures.
const (
	histogramMin     int64 = 1
	histogramMax     int64 = 3600000000
	histogramSigFigs       = 3
)

// LatencyLog is the shared, append-only record of call latencies in
// milliseconds. Every call attempt adds exactly one entry, failed calls
// included.
//
// LatencyLog is safe for concurrent use. Entries and the HDR histogram are
// updated under the same mutex so an append is never lost or half-applied.
type LatencyLog struct {
	mu      sync.Mutex
	entries []float64
	hist    *hdrhistogram.Histogram
}

// NewLatencyLog creates an empty log. capacity is a hint, usually the total
// call count.
func NewLatencyLog(capacity int) *LatencyLog {
	if capacity < 0 {
		capacity = 0
	}
	return &LatencyLog{
		entries: make([]float64, 0, capacity),
		hist:    hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
	}
}

// Record appends one latency, in fractional milliseconds.
func (l *LatencyLog) Record(ms float64) {
	micros := int64(ms * 1000)
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, ms)
	// Values are clamped to the histogram range, so this cannot fail.
	_ = l.hist.RecordValue(micros)
}

// Len returns the number of recorded entries.
func (l *LatencyLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Mean returns the arithmetic mean of all entries, or 0 for an empty log.
// It is computed from the exact values, not from the histogram.
func (l *LatencyLog) Mean() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return 0
	}

	var sum float64
	for _, v := range l.entries {
		sum += v
	}
	return sum / float64(len(l.entries))
}

// Percentiles returns histogram-based latency percentiles in milliseconds.
func (l *LatencyLog) Percentiles() Percentiles {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.hist.TotalCount() == 0 {
		return Percentiles{}
	}

	return Percentiles{
		Min: microsToMillis(l.hist.Min()),
		P50: microsToMillis(l.hist.ValueAtQuantile(50)),
		P90: microsToMillis(l.hist.ValueAtQuantile(90)),
		P99: microsToMillis(l.hist.ValueAtQuantile(99)),
		Max: microsToMillis(l.hist.Max()),
	}
}

// Percentiles holds latency percentiles in milliseconds.
type Percentiles struct {
	Min float64
	P50 float64
	P90 float64
	P99 float64
	Max float64
}

func microsToMillis(v int64) float64 {
	return float64(v) / 1000.0
}
