package client

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/apitester/internal/config"
)

// connCountingServer counts new TCP connections and records the Connection
// header of every request.
type connCountingServer struct {
	*httptest.Server
	newConns atomic.Int64

	mu      sync.Mutex
	headers []string
}

func newConnCountingServer(t *testing.T, tls bool) *connCountingServer {
	t.Helper()

	s := &connCountingServer{}
	s.Server = httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.headers = append(s.headers, r.Header.Get("Connection"))
		s.mu.Unlock()

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	s.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			s.newConns.Add(1)
		}
	}
	if tls {
		s.StartTLS()
	} else {
		s.Start()
	}
	t.Cleanup(s.Close)
	return s
}

func (s *connCountingServer) connectionHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.headers...)
}

func drainAndClose(t *testing.T, resp *http.Response) {
	t.Helper()
	_, err := io.Copy(io.Discard, resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
}

func TestNew_ReuseConnects(t *testing.T) {
	server := newConnCountingServer(t, false)

	cfg := config.Default(server.URL)
	cfg.NumThreads = 3
	cfg.ReuseConnects = true

	c := New(cfg)
	defer c.CloseIdleConnections()

	assert.False(t, c.transport.DisableKeepAlives)
	assert.Equal(t, 30, c.transport.MaxIdleConnsPerHost)
	assert.GreaterOrEqual(t, c.transport.MaxIdleConns, 30)
	assert.Equal(t, "keep-alive", c.headers.Get("Connection"))

	for i := 0; i < 3; i++ {
		resp, err := c.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		drainAndClose(t, resp)
	}

	assert.Equal(t, []string{"keep-alive", "keep-alive", "keep-alive"}, server.connectionHeaders())
	assert.Equal(t, int64(1), server.newConns.Load(), "sequential calls should share one pooled connection")
}

func TestNew_CloseConnections(t *testing.T) {
	server := newConnCountingServer(t, false)

	cfg := config.Default(server.URL)
	cfg.NumThreads = 3

	c := New(cfg)

	assert.True(t, c.transport.DisableKeepAlives)
	assert.Equal(t, 0, c.transport.MaxIdleConnsPerHost)
	assert.Equal(t, "close", c.headers.Get("Connection"))

	for i := 0; i < 3; i++ {
		resp, err := c.Get(context.Background())
		require.NoError(t, err)
		drainAndClose(t, resp)
	}

	assert.Equal(t, []string{"close", "close", "close"}, server.connectionHeaders())
	assert.Equal(t, int64(3), server.newConns.Load(), "every call should open its own connection")
}

func TestNew_Timeouts(t *testing.T) {
	cfg := config.Default("http://127.0.0.1:1")
	cfg.RequestTimeout = 1500 * time.Millisecond
	cfg.ConnectTimeout = 250 * time.Millisecond

	c := New(cfg)

	assert.Equal(t, 1500*time.Millisecond, c.httpClient.Timeout)
	assert.Equal(t, 250*time.Millisecond, c.dialer.Timeout)
	assert.Equal(t, 250*time.Millisecond, c.transport.TLSHandshakeTimeout)
}

func TestNew_HTTPSAcceptsSelfSignedCertificates(t *testing.T) {
	server := newConnCountingServer(t, true)

	c := New(config.Default(server.URL))

	require.NotNil(t, c.transport.TLSClientConfig)
	assert.True(t, c.transport.TLSClientConfig.InsecureSkipVerify)

	resp, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	drainAndClose(t, resp)
}

func TestNew_PlainHTTPKeepsVerification(t *testing.T) {
	c := New(config.Default("http://localhost:8080"))

	if c.transport.TLSClientConfig != nil {
		assert.False(t, c.transport.TLSClientConfig.InsecureSkipVerify)
	}
}

// Targets net/http cannot send to still build a client; each call fails.
func TestClient_UnusableTargetFailsPerCall(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "unparseable", target: "http://[::1"},
		{name: "no host", target: "http:///path"},
		{name: "scheme only", target: "https"},
		{name: "no scheme separator", target: "httpfoo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(config.Default(tt.target))
			require.NotNil(t, c)

			for i := 0; i < 2; i++ {
				resp, err := c.Get(context.Background())
				assert.Error(t, err)
				assert.Nil(t, resp)
			}
		})
	}
}

func TestClient_RequestTimeoutIsAnError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := NewClient(server.URL, WithRequestTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := c.Get(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestHeaderTransport_DoesNotOverrideOrMutate(t *testing.T) {
	var got atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("X-Run"))
	}))
	defer server.Close()

	c := NewClient(server.URL, WithHeader("X-Run", "default"))

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	req.Header.Set("X-Run", "explicit")

	resp, err := c.httpClient.Do(req)
	require.NoError(t, err)
	drainAndClose(t, resp)
	assert.Equal(t, "explicit", got.Load())

	req2, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err = c.httpClient.Do(req2)
	require.NoError(t, err)
	drainAndClose(t, resp)
	assert.Equal(t, "default", got.Load())
	assert.Empty(t, req2.Header.Get("X-Run"), "caller's request must not be modified")
}
