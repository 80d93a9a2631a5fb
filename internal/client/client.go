// Package client builds the single HTTP client shared by every worker.
package client

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/wesleyorama2/apitester/internal/config"
)

// Client issues GET requests against one target URL.
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	httpClient *http.Client
	transport  *http.Transport
	dialer     *net.Dialer
	target     string
	headers    http.Header
}

// Option configures a Client.
type Option func(*Client)

// New builds the client described by cfg:
//   - request timeout on the http.Client, connect timeout on dial and TLS handshake
//   - an idle pool of 10 connections per worker when connections are reused
//   - "Connection: keep-alive" or "Connection: close" on every request
//   - certificate verification disabled for https targets
func New(cfg config.RunConfig) *Client {
	options := []Option{
		WithRequestTimeout(cfg.RequestTimeout),
		WithConnectTimeout(cfg.ConnectTimeout),
		WithIdleConnsPerHost(cfg.IdleConnsPerHost()),
	}

	if cfg.IsHTTPS() {
		options = append(options, WithInsecureSkipVerify())
	}

	if cfg.ReuseConnects {
		options = append(options, WithHeader("Connection", "keep-alive"))
	} else {
		options = append(options, WithHeader("Connection", "close"))
	}

	return NewClient(cfg.URL, options...)
}

// NewClient creates a client for target with the given options. target is
// not checked here: a URL net/http cannot send to makes every Get fail.
//
// Example:
//
//	c := client.NewClient("https://staging.example.com/health",
//	    client.WithRequestTimeout(5*time.Second),
//	    client.WithHeader("Connection", "keep-alive"),
//	)
func NewClient(target string, options ...Option) *Client {
	dialer := &net.Dialer{
		Timeout:   config.DefaultConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = config.DefaultConnectTimeout

	headers := make(http.Header)
	c := &Client{
		httpClient: &http.Client{
			Timeout:   config.DefaultRequestTimeout,
			Transport: &headerTransport{base: transport, headers: headers},
		},
		transport: transport,
		dialer:    dialer,
		target:    target,
		headers:   headers,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// WithRequestTimeout bounds a whole call, from dial to the end of the body.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithConnectTimeout bounds the TCP dial and the TLS handshake.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.dialer.Timeout = timeout
		c.transport.TLSHandshakeTimeout = timeout
	}
}

// WithIdleConnsPerHost sets the idle pool capacity. Zero disables connection
// reuse entirely; net/http would otherwise read zero as "use the default".
func WithIdleConnsPerHost(n int) Option {
	return func(c *Client) {
		if n <= 0 {
			c.transport.DisableKeepAlives = true
			c.transport.MaxIdleConnsPerHost = 0
			return
		}
		c.transport.DisableKeepAlives = false
		c.transport.MaxIdleConnsPerHost = n
		if c.transport.MaxIdleConns < n {
			c.transport.MaxIdleConns = n
		}
	}
}

// WithInsecureSkipVerify accepts any server certificate.
// WARNING: only meant for load testing non-production endpoints.
func WithInsecureSkipVerify() Option {
	return func(c *Client) {
		c.transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// Get sends one GET request to the target. The caller owns the response body.
func (c *Client) Get(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.target, nil)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

// CloseIdleConnections closes pooled connections once the run is over.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// headerTransport adds default headers to requests that do not set them.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	for key, values := range t.headers {
		if out.Header.Get(key) == "" {
			out.Header[key] = append([]string(nil), values...)
		}
	}
	return t.base.RoundTrip(out)
}

// CloseIdleConnections lets http.Client.CloseIdleConnections reach the base transport.
func (t *headerTransport) CloseIdleConnections() {
	if ci, ok := t.base.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}
