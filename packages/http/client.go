package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	neturl "net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
)

// Transport sends one request and returns its fully read response.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

type Client struct {
	httpClient     *http.Client
	timeout        time.Duration
	followRedirect bool
	maxRedirects   int
	validateSSL    bool
	proxyURL       string
	allowFile      bool
	defaultHeaders map[string]string
}

var _ Transport = (*Client)(nil)

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		followRedirect: true,
		maxRedirects:   DefaultMaxRedirects,
		validateSSL:    true,
		defaultHeaders: make(map[string]string),
	}

	for _, opt := range opts {
		opt(c)
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	if !c.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	if c.proxyURL != "" {
		proxyURL, err := neturl.Parse(c.proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !c.followRedirect {
			return http.ErrUseLastResponse
		}
		if len(via) >= c.maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}

	// timeouts are applied per request through the context
	c.httpClient = &http.Client{
		Transport:     transport,
		CheckRedirect: redirectPolicy,
	}

	return c
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.followRedirect = follow
	}
}

func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = max
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithFileScheme allows read-only file:// requests
func WithFileScheme(allow bool) ClientOption {
	return func(c *Client) {
		c.allowFile = allow
	}
}

func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	target := req.URL
	if err := ValidateURL(target, c.allowFile); err != nil {
		return nil, err
	}

	if strings.HasPrefix(target, "file:") {
		return c.doFile(ctx, req, target)
	}

	return c.doRequest(ctx, req, target)
}

func (c *Client) doRequest(ctx context.Context, req *Request, target string) (*Response, error) {
	var body io.Reader
	if req.Body != "" {
		body = bytes.NewBufferString(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, err
	}

	for k, v := range c.defaultHeaders {
		httpReq.Header.Set(k, v)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string)
	for k := range httpResp.Header {
		headers[k] = httpResp.Header.Get(k)
	}

	return &Response{
		RequestID:  req.ID,
		URL:        target,
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    headers,
		Body:       respBody,
		Duration:   duration,
	}, nil
}

// doFile serves a file:// URL from the local filesystem. A missing file is
// reported as a 404 response so it fails the batch like any other status.
func (c *Client) doFile(ctx context.Context, req *Request, target string) (*Response, error) {
	if req.Method != "" && req.Method != http.MethodGet {
		return nil, fmt.Errorf("file URLs are read-only, got method %s", req.Method)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u, err := neturl.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	start := time.Now()
	data, err := os.ReadFile(filepath.FromSlash(u.Path))
	duration := time.Since(start)

	if errors.Is(err, fs.ErrNotExist) {
		return &Response{
			RequestID:  req.ID,
			URL:        target,
			StatusCode: http.StatusNotFound,
			Status:     "404 Not Found",
			Headers:    map[string]string{},
			Body:       []byte(err.Error()),
			Duration:   duration,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	headers := map[string]string{}
	if ct := mime.TypeByExtension(filepath.Ext(u.Path)); ct != "" {
		headers["Content-Type"] = ct
	}

	return &Response{
		RequestID:  req.ID,
		URL:        target,
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Headers:    headers,
		Body:       data,
		Duration:   duration,
	}, nil
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme.
// file URLs are accepted only when allowFile is set.
func ValidateURL(rawURL string, allowFile bool) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("URL must have a host")
		}
	case "file":
		if !allowFile {
			return fmt.Errorf("unsupported URL scheme: %s (file URLs are disabled)", u.Scheme)
		}
		if u.Path == "" {
			return fmt.Errorf("file URL must have a path")
		}
	default:
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}

	return nil
}
