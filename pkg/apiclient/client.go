package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultBaseURL is used when no API URL is configured.
	DefaultBaseURL = "http://localhost:8080"

	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerAuthorization = "Authorization"
	mimeJSON            = "application/json"
)

// Config is the client configuration fixed at construction time.
type Config struct {
	BaseURL string
	Headers map[string]string
	Timeout time.Duration
}

// DefaultConfig returns the fallback base URL and the JSON default headers.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Headers: defaultHeaders(),
	}
}

func defaultHeaders() map[string]string {
	return map[string]string{
		headerContentType: mimeJSON,
		headerAccept:      mimeJSON,
	}
}

// Client is the shared API client. It carries the base URL, the default headers and
// the bearer token interceptor; callers supply path and body.
type Client struct {
	rc  *resty.Client
	cfg Config
}

// Option customizes a Client during construction.
type Option func(*options)

type options struct {
	tokenKey     string
	interceptors []RequestInterceptor
	onError      func(method, url string, err error)
	base         *resty.Client
}

// WithTokenKey overrides the storage key the interceptor reads.
func WithTokenKey(key string) Option {
	return func(o *options) {
		if key = strings.TrimSpace(key); key != "" {
			o.tokenKey = key
		}
	}
}

// WithInterceptors registers request interceptors that run before the bearer token interceptor.
func WithInterceptors(interceptors ...RequestInterceptor) Option {
	return func(o *options) {
		o.interceptors = append(o.interceptors, interceptors...)
	}
}

// WithErrorObserver installs a callback invoked for every failed request. It observes the
// error only and cannot change what the caller receives.
func WithErrorObserver(fn func(method, url string, err error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// WithRestyClient builds on top of an existing resty client instead of a fresh one.
func WithRestyClient(rc *resty.Client) Option {
	return func(o *options) {
		o.base = rc
	}
}

// New builds the shared client. tokens may be nil, in which case no Authorization header is ever set.
func New(cfg Config, tokens TokenReader, opts ...Option) (*Client, error) {
	o := options{tokenKey: AccessTokenKey}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	rc := o.base
	if rc == nil {
		rc = resty.New()
	}
	rc.SetBaseURL(cfg.BaseURL)
	rc.SetHeaders(cfg.Headers)
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	c := &Client{rc: rc, cfg: cfg}
	c.Use(o.interceptors...)
	if tokens != nil {
		c.Use(BearerAuth(tokens, o.tokenKey))
	}
	if o.onError != nil {
		fn := o.onError
		rc.OnError(func(req *resty.Request, err error) {
			fn(req.Method, req.URL, err)
		})
	}
	return c, nil
}

// normalizeConfig applies the fallback base URL and merges extra headers under the defaults.
// Extra headers cannot replace Content-Type or Accept, and Authorization is left to the interceptor.
func normalizeConfig(cfg Config) (Config, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return Config{}, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Config{}, &url.Error{Op: "parse", URL: base, Err: errors.New("base url must be absolute")}
	}

	headers := defaultHeaders()
	for k, v := range sanitizeHeaders(cfg.Headers) {
		if _, reserved := headers[k]; reserved || k == headerAuthorization {
			continue
		}
		headers[k] = v
	}

	return Config{
		BaseURL: strings.TrimRight(base, "/"),
		Headers: headers,
		Timeout: cfg.Timeout,
	}, nil
}

// Use registers interceptors on the underlying client. Call during initialization,
// before the client is shared across goroutines.
func (c *Client) Use(interceptors ...RequestInterceptor) {
	for _, ic := range interceptors {
		if ic == nil {
			continue
		}
		fn := ic
		c.rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return fn(req)
		})
	}
}

// R starts a new request against the configured base URL.
func (c *Client) R() *resty.Request {
	return c.rc.R()
}

// Resty exposes the configured resty.Client for callers needing custom verbs.
func (c *Client) Resty() *resty.Client {
	return c.rc
}

// BaseURL returns the URL prefix applied to relative request paths.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Config returns a copy of the construction-time configuration.
func (c *Client) Config() Config {
	out := c.cfg
	out.Headers = make(map[string]string, len(c.cfg.Headers))
	for k, v := range c.cfg.Headers {
		out.Headers[k] = v
	}
	return out
}

// Do performs a request with the given method and path. Non-2xx responses are returned
// as a Response with a nil error.
func (c *Client) Do(ctx context.Context, method, path string, body any, headers map[string]string) (Response, error) {
	req := c.rc.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Execute(strings.ToUpper(strings.TrimSpace(method)), path)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// Get performs an HTTP GET request with the specified context, path, and headers.
func (c *Client) Get(ctx context.Context, path string, headers map[string]string) (Response, error) {
	return c.Do(ctx, resty.MethodGet, path, nil, headers)
}

// Post performs an HTTP POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, headers map[string]string) (Response, error) {
	return c.Do(ctx, resty.MethodPost, path, body, headers)
}

// restyResponseAdapter adapts resty.Response to the Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte              { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int           { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header(name string) string { return r.resp.Header().Get(name) }
