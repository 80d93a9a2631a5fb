// Package config resolves the api-tester command line into a RunConfig.
package config

import (
	"strings"
	"time"
)

// Defaults applied before a profile or any flag is read.
const (
	DefaultTotalCalls     = 10000
	DefaultNumThreads     = 12
	DefaultSleepTime      = 0 * time.Millisecond
	DefaultRequestTimeout = 10000 * time.Millisecond
	DefaultConnectTimeout = 30000 * time.Millisecond
)

// RunConfig holds everything a run needs. It is built once by Resolve and
// passed by value afterwards.
type RunConfig struct {
	// URL is the target; it always starts with "http" (any case)
	URL string

	// TotalCalls is split across all workers
	TotalCalls int

	// NumThreads is the number of concurrent workers, always > 0
	NumThreads int

	// SleepTime is the pause between two calls of the same worker
	SleepTime time.Duration

	RequestTimeout time.Duration
	ConnectTimeout time.Duration

	// ReuseConnects sends "Connection: keep-alive" and keeps an idle pool
	ReuseConnects bool

	// KeepConnectsOpen skips draining the response body after each call
	KeepConnectsOpen bool
}

// Default returns a RunConfig for url with every option at its default.
func Default(url string) RunConfig {
	return RunConfig{
		URL:            url,
		TotalCalls:     DefaultTotalCalls,
		NumThreads:     DefaultNumThreads,
		SleepTime:      DefaultSleepTime,
		RequestTimeout: DefaultRequestTimeout,
		ConnectTimeout: DefaultConnectTimeout,
	}
}

// IsHTTPS reports whether the target uses the https scheme.
func (c RunConfig) IsHTTPS() bool {
	return strings.HasPrefix(strings.ToLower(c.URL), "https")
}

// IdleConnsPerHost is the idle pool capacity the client should use.
func (c RunConfig) IdleConnsPerHost() int {
	if !c.ReuseConnects {
		return 0
	}
	return c.NumThreads * 10
}

// ValidURL reports whether s is accepted as a target URL.
func ValidURL(s string) bool {
	return strings.HasPrefix(strings.ToLower(s), "http")
}
