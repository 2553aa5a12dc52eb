package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/proxy"
)

// defaultTimeout is used when no timeout option is given.
const defaultTimeout = 30 * time.Second

// Client is a lazily constructed, shared HTTP handle for one provider.
// It is safe for concurrent use.
type Client struct {
	name         string
	timeout      time.Duration
	proxyAddress string
	userAgent    string
	headers      map[string]string

	mu     sync.Mutex
	client *http.Client
	closed bool
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithProxy routes all traffic through a SOCKS5 proxy at "host:port".
// An empty address means direct connections.
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHeaders adds headers to every request. Credential headers such as
// x-apikey or Authorization are set here.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			if v == "" {
				continue
			}
			c.headers[k] = v
		}
	}
}

// WithBearerToken sets "Authorization: Bearer <token>" on every request.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.headers["Authorization"] = "Bearer " + token
		}
	}
}

// New creates a handle for the named provider. It validates options but
// does not open any connection.
func New(name string, opts ...Option) (*Client, error) {
	c := &Client{
		name:    name,
		timeout: defaultTimeout,
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.proxyAddress != "" && !isValidProxyAddress(c.proxyAddress) {
		return nil, fmt.Errorf("%s: %w", name, ErrInvalidProxyAddress)
	}

	return c, nil
}

// Name returns the provider name the handle was created for.
func (c *Client) Name() string {
	return c.name
}

// HTTPClient returns the shared *http.Client, building it on first use.
// After Close it returns ErrClosed.
func (c *Client) HTTPClient() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.client != nil {
		return c.client, nil
	}

	client, err := c.build()
	if err != nil {
		return nil, err
	}
	c.client = client
	return c.client, nil
}

// Do sends req through the shared client.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	client, err := c.HTTPClient()
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

// Close releases idle connections. Only the first call has an effect.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.client != nil {
		c.client.CloseIdleConnections()
		c.client = nil
	}
	return nil
}

// build creates the underlying client.
func (c *Client) build() (*http.Client, error) {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if c.proxyAddress != "" {
		dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
	}

	var rt http.RoundTripper = transport
	if len(c.headers) > 0 || c.userAgent != "" {
		rt = &headerInjectingTransport{
			base:      transport,
			userAgent: c.userAgent,
			headers:   c.headers,
		}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   c.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// isValidProxyAddress checks if the address is in "host:port" format
// with a port between 1 and 65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || port == "" || strings.Contains(host, "/") {
		return false
	}

	portNum := 0
	for _, ch := range port {
		if ch < '0' || ch > '9' {
			return false
		}
		portNum = portNum*10 + int(ch-'0')
		if portNum > 65535 {
			return false
		}
	}
	return portNum >= 1
}

// headerInjectingTransport sets credential and identification headers on
// every outgoing request.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	headers   map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.userAgent != "" && clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
