// Package output writes the human-readable console output of a run.
package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/wesleyorama2/apitester/internal/config"
	"github.com/wesleyorama2/apitester/internal/metrics"
)

// Printer writes run output to a single writer. Workers call it
// concurrently; each line is written under a mutex so lines never tear.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	colors *ColorScheme
}

// NewPrinter creates a printer that colors its output only when out is a
// terminal.
func NewPrinter(out io.Writer) *Printer {
	return NewPrinterWithColor(out, !IsTerminal(out))
}

// NewPrinterWithColor creates a printer with colors explicitly on or off.
func NewPrinterWithColor(out io.Writer, noColor bool) *Printer {
	colors := DefaultColorScheme()
	if noColor {
		colors = NoColorScheme()
	}
	return &Printer{out: out, colors: colors}
}

func (p *Printer) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

// Message prints a single line as-is.
func (p *Printer) Message(line string) {
	p.println(line)
}

// Help prints the usage text.
func (p *Printer) Help() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.out, config.HelpText())
}

// RunStarted prints the line that opens a run.
func (p *Printer) RunStarted(runID string, cfg config.RunConfig) {
	p.println(fmt.Sprintf("Run %s: %d calls to %s across %d threads",
		p.colors.Label.Sprint(runID), cfg.TotalCalls, cfg.URL, cfg.NumThreads))
}

// CallSucceeded logs a completed call. call is zero-based within the worker.
func (p *Printer) CallSucceeded(worker, call int, status string, elapsedMs float64) {
	p.println(fmt.Sprintf("Thread %2d.%-6d - Success: %s - Response time: %.2f ms",
		worker, call, p.colors.Success.Sprint(status), elapsedMs))
}

// CallFailed logs a call that returned an error instead of a response.
func (p *Printer) CallFailed(worker, call int, err error, elapsedMs float64) {
	p.println(fmt.Sprintf("Thread %2d.%-6d - Request failed: %s - Response time: %.2f ms",
		worker, call, p.colors.Failure.Sprint(err), elapsedMs))
}

// PrintSummary prints the end-of-run report.
func (p *Printer) PrintSummary(s metrics.Summary) {
	h := p.colors.Highlight

	lines := []string{
		fmt.Sprintf("Total test time: %s s", h.Sprintf("%.2f", s.TotalTime.Seconds())),
		fmt.Sprintf("Average response time: %s ms", h.Sprintf("%.2f", s.AverageMs)),
		fmt.Sprintf("Average requests per second: %s", h.Sprintf("%.2f", s.RequestsPerSecond)),
		fmt.Sprintf("Response time percentiles: min %.2f ms, p50 %.2f ms, p90 %.2f ms, p99 %.2f ms, max %.2f ms",
			s.Latency.Min, s.Latency.P50, s.Latency.P90, s.Latency.P99, s.Latency.Max),
		p.colors.Success.Sprint("All threads have finished."),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, line := range lines {
		fmt.Fprintln(p.out, line)
	}
}
