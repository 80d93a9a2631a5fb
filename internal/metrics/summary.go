package metrics

import "time"

// Summary is the end-of-run report.
type Summary struct {
	// TotalTime spans from pool launch to the last worker's completion
	TotalTime time.Duration

	// AverageMs mixes successful and failed calls; failures count with
	// their time-to-failure.
	AverageMs float64

	RequestsPerSecond float64

	Latency Percentiles
}

// Summarize builds the report once every worker has joined.
// An empty log averages to 0 and a zero elapsed time gives 0 requests/s.
func Summarize(log *LatencyLog, totalCalls int, elapsed time.Duration) Summary {
	rps := 0.0
	if elapsed > 0 {
		rps = float64(totalCalls) / elapsed.Seconds()
	}

	return Summary{
		TotalTime:         elapsed,
		AverageMs:         log.Mean(),
		RequestsPerSecond: rps,
		Latency:           log.Percentiles(),
	}
}
