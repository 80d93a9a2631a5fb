package config

import (
	"fmt"
	"strings"
	"time"
)

// HelpText returns the usage text printed for -?, --help and usage errors.
// Defaults are rendered from the constants so the text cannot drift from
// what the resolver actually applies.
func HelpText() string {
	var b strings.Builder

	b.WriteString("Usage:\n")
	b.WriteString("  api-tester [URL] [arguments]\n")
	b.WriteString("Required arguments:\n")
	b.WriteString("  [URL]                   - Server URL.\n")
	b.WriteString("Optional Arguments:\n")
	fmt.Fprintf(&b, "  -totalCalls [value]     - Total number of calls across all threads. Default is %d.\n", DefaultTotalCalls)
	fmt.Fprintf(&b, "  -numThreads [value]     - Number of threads. Default is %d.\n", DefaultNumThreads)
	fmt.Fprintf(&b, "  -sleepTime [value]      - Sleep time in milliseconds between calls within a thread. Default is %d.\n", ms(DefaultSleepTime))
	fmt.Fprintf(&b, "  -requestTimeOut [value] - HTTP request timeout in milliseconds. Default is %d.\n", ms(DefaultRequestTimeout))
	fmt.Fprintf(&b, "  -connectTimeOut [value] - HTTP connect timeout in milliseconds. Default is %d.\n", ms(DefaultConnectTimeout))
	b.WriteString("  -reuseConnects          - Add the request 'Connection: keep-alive' header and pool idle connections.\n")
	b.WriteString("  -keepConnectsOpen       - Do not read the response body after each call.\n")
	b.WriteString("  -configFile [path]      - YAML or JSON profile with default values for the options above.\n")
	b.WriteString("Help:\n")
	b.WriteString("  -? or --help - Display this help message.\n")

	return b.String()
}

func ms(d time.Duration) int64 {
	return d.Milliseconds()
}
