// Package executor fans a fixed number of calls out over a fixed pool of
// workers.
package executor

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/wesleyorama2/apitester/internal/config"
	"github.com/wesleyorama2/apitester/internal/metrics"
)

// Requester issues one call against the target.
type Requester interface {
	Get(ctx context.Context) (*http.Response, error)
}

// CallLogger receives one event per finished call. It is called from every
// worker goroutine and must be safe for concurrent use.
type CallLogger interface {
	CallSucceeded(worker, call int, status string, elapsedMs float64)
	CallFailed(worker, call int, err error, elapsedMs float64)
}

// Distribute splits total calls over workers: every worker gets
// total/workers calls and the first total%workers workers get one more.
func Distribute(total, workers int) []int {
	if workers <= 0 {
		return nil
	}
	if total < 0 {
		total = 0
	}

	base := total / workers
	extra := total % workers

	plan := make([]int, workers)
	for i := range plan {
		plan[i] = base
		if i < extra {
			plan[i]++
		}
	}
	return plan
}

// Result describes a finished run.
type Result struct {
	// Elapsed spans from launching the first worker to the last join
	Elapsed time.Duration
}

// SharedIterations runs cfg.TotalCalls calls shared across cfg.NumThreads
// workers. Workers are launched together and joined together; each one runs
// its share strictly in sequence.
//
// A failed call is logged and recorded like any other: it is never retried
// and never stops its worker or the run.
type SharedIterations struct {
	cfg       config.RunConfig
	client    Requester
	latencies *metrics.LatencyLog
	logger    CallLogger
}

// NewSharedIterations creates the pool. Nothing runs until Run is called.
func NewSharedIterations(cfg config.RunConfig, client Requester, latencies *metrics.LatencyLog, logger CallLogger) *SharedIterations {
	return &SharedIterations{
		cfg:       cfg,
		client:    client,
		latencies: latencies,
		logger:    logger,
	}
}

// worker is the per-goroutine task: an ordinal and its share of the calls.
type worker struct {
	id    int
	calls int
}

// Run launches every worker and blocks until all of them are done.
func (e *SharedIterations) Run(ctx context.Context) Result {
	plan := Distribute(e.cfg.TotalCalls, e.cfg.NumThreads)

	var wg sync.WaitGroup
	start := time.Now()

	for id, calls := range plan {
		wg.Add(1)
		go func(w worker) {
			defer wg.Done()
			e.runWorker(ctx, w)
		}(worker{id: id, calls: calls})
	}

	wg.Wait()

	return Result{Elapsed: time.Since(start)}
}

func (e *SharedIterations) runWorker(ctx context.Context, w worker) {
	for i := 0; i < w.calls; i++ {
		elapsedMs := e.call(ctx, w.id, i)
		e.latencies.Record(elapsedMs)

		e.sleep(ctx)
	}
}

// call performs one timed GET and logs it. The returned latency stops at the
// response headers; reading the body is not part of it.
func (e *SharedIterations) call(ctx context.Context, workerID, index int) float64 {
	start := time.Now()
	resp, err := e.client.Get(ctx)
	elapsedMs := float64(time.Since(start)) / float64(time.Millisecond)

	if err != nil {
		e.logger.CallFailed(workerID, index, err, elapsedMs)
		return elapsedMs
	}

	status := resp.Status
	if status == "" {
		status = strconv.Itoa(resp.StatusCode)
	}

	if !e.cfg.KeepConnectsOpen {
		// Draining lets the transport put the connection back in the pool.
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	resp.Body.Close()

	e.logger.CallSucceeded(workerID, index, status, elapsedMs)
	return elapsedMs
}

func (e *SharedIterations) sleep(ctx context.Context) {
	if e.cfg.SleepTime <= 0 {
		return
	}

	timer := time.NewTimer(e.cfg.SleepTime)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
