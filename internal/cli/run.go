package cli

import (
	"context"

	"github.com/google/uuid"

	"github.com/wesleyorama2/apitester/internal/client"
	"github.com/wesleyorama2/apitester/internal/config"
	"github.com/wesleyorama2/apitester/internal/executor"
	"github.com/wesleyorama2/apitester/internal/metrics"
	"github.com/wesleyorama2/apitester/internal/output"
)

// runLoad executes one complete run: build the shared client, fan the calls
// out over the workers, then print the summary.
func runLoad(ctx context.Context, cfg config.RunConfig, printer *output.Printer) {
	httpClient := client.New(cfg)
	defer httpClient.CloseIdleConnections()

	printer.RunStarted(uuid.New().String(), cfg)

	latencies := metrics.NewLatencyLog(cfg.TotalCalls)
	pool := executor.NewSharedIterations(cfg, httpClient, latencies, printer)
	result := pool.Run(ctx)

	printer.PrintSummary(metrics.Summarize(latencies, cfg.TotalCalls, result.Elapsed))
}
