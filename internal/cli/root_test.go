package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/apitester/internal/config"
	"github.com/wesleyorama2/apitester/internal/target"
)

func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	if args == nil {
		args = []string{}
	}

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err = execute(cmd, args)
	return out.String(), errOut.String(), err
}

// countingServer serves the local target and returns the URL of its
// immediate 200 endpoint.
func countingServer(t *testing.T) (string, *atomic.Int64) {
	t.Helper()

	var hits atomic.Int64
	handler := target.NewHandler()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return server.URL + "/status/200", &hits
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestRoot_NoArguments(t *testing.T) {
	stdout, stderr, err := runCommand(t)

	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.True(t, strings.HasPrefix(stdout, "Error: No command line argument provided.\n"))
	assert.Contains(t, stdout, config.HelpText())
}

func TestRoot_Help(t *testing.T) {
	for _, flag := range []string{"-?", "--help"} {
		t.Run(flag, func(t *testing.T) {
			stdout, stderr, err := runCommand(t, "http://localhost", "-totalCalls", "5", flag)

			require.NoError(t, err)
			assert.Empty(t, stderr)
			assert.Equal(t, config.HelpText(), stdout)
		})
	}
}

func TestRoot_InvalidURLMakesNoCalls(t *testing.T) {
	_, hits := countingServer(t)

	stdout, _, err := runCommand(t, "ftp://example.com", "-totalCalls", "5")

	require.NoError(t, err)
	assert.Contains(t, stdout, `Error: "ftp://example.com" is not a valid URL`)
	assert.Contains(t, stdout, config.HelpText())
	assert.NotContains(t, stdout, "- Success:")
	assert.NotContains(t, stdout, "Request failed:")
	assert.NotContains(t, stdout, "All threads have finished.")
	assert.Zero(t, hits.Load())
}

func TestRoot_ParseErrorIsFatal(t *testing.T) {
	url, hits := countingServer(t)

	stdout, stderr, err := runCommand(t, url, "-sleepTime", "abc")

	require.Error(t, err)
	var parseErr *config.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "sleepTime", parseErr.Flag)

	assert.Empty(t, stdout)
	assert.True(t, strings.HasPrefix(stderr, "Error: invalid integer for sleepTime"))
	assert.Zero(t, hits.Load())
}

func TestRoot_ProfileErrorIsFatal(t *testing.T) {
	url, hits := countingServer(t)
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("numThreads: 0\n"), 0o600))

	_, stderr, err := runCommand(t, url, "-configFile", path)

	require.Error(t, err)
	assert.Contains(t, stderr, "failed to load profile")
	assert.Zero(t, hits.Load())
}

func TestRoot_FullRun(t *testing.T) {
	url, hits := countingServer(t)

	stdout, stderr, err := runCommand(t, url, "-totalCalls", "7", "-numThreads", "3", "-reuseConnects")

	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Equal(t, int64(7), hits.Load())

	out := lines(stdout)
	// start line, one line per call, five summary lines
	require.Len(t, out, 1+7+5)

	assert.Regexp(t, `^Run [0-9a-f-]{36}: 7 calls to `+regexp.QuoteMeta(url)+` across 3 threads$`, out[0])

	perWorker := map[string]int{}
	for _, line := range out[1:8] {
		assert.Regexp(t, `^Thread +\d+\.\d+ +- Success: 200 OK - Response time: \d+\.\d{2} ms$`, line)
		worker, _, _ := strings.Cut(strings.Fields(line)[1], ".")
		perWorker[worker]++
	}
	assert.Len(t, perWorker, 3)

	assert.Regexp(t, `^Total test time: \d+\.\d{2} s$`, out[8])
	assert.Regexp(t, `^Average response time: \d+\.\d{2} ms$`, out[9])
	assert.Regexp(t, `^Average requests per second: \d+\.\d{2}$`, out[10])
	assert.True(t, strings.HasPrefix(out[11], "Response time percentiles: min "))
	assert.Equal(t, "All threads have finished.", out[12])
}

func TestRoot_FailedCallsAreReportedNotFatal(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	stdout, stderr, err := runCommand(t, url, "-totalCalls", "2", "-numThreads", "1", "-connectTimeOut", "1000")

	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Equal(t, 2, strings.Count(stdout, "Request failed: "))
	assert.Contains(t, stdout, "All threads have finished.")
}

func TestRoot_HostlessURLFailsEveryCall(t *testing.T) {
	for _, url := range []string{"http", "httpfoo", "http:///path"} {
		t.Run(url, func(t *testing.T) {
			stdout, stderr, err := runCommand(t, url, "-totalCalls", "3", "-numThreads", "1")

			require.NoError(t, err)
			assert.Empty(t, stderr)
			assert.Equal(t, 3, strings.Count(stdout, "Request failed: "))
			assert.Contains(t, stdout, "All threads have finished.")
		})
	}
}

func TestRoot_NoVersionFlag(t *testing.T) {
	stdout, stderr, err := runCommand(t, "--version")

	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.True(t, strings.HasPrefix(stdout, `Error: "--version" is not a valid URL`))
	assert.Contains(t, stdout, config.HelpText())
}

func TestRoot_ZeroCalls(t *testing.T) {
	url, hits := countingServer(t)

	stdout, _, err := runCommand(t, url, "-totalCalls", "0")

	require.NoError(t, err)
	assert.Zero(t, hits.Load())
	assert.Contains(t, stdout, "Average response time: 0.00 ms")
	assert.Contains(t, stdout, "All threads have finished.")
}
