package api

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tansive/ghrest/internal/common/httpclient"
	"github.com/tansive/ghrest/internal/common/logtrace"
)

// Connection sends calls to the GitHub API. It is safe for concurrent use; the only
// state that changes after construction is the ApiInfo of the latest response.
type Connection struct {
	config     Config
	base       *url.URL
	sender     httpclient.Sender
	httpClient *http.Client
	pipeline   *JSONPipeline

	mu       sync.RWMutex
	lastInfo *ApiInfo
}

// ConnectionOption configures a Connection.
type ConnectionOption func(*Connection)

// WithHTTPClient makes the default adapter use a copy of client.
func WithHTTPClient(client *http.Client) ConnectionOption {
	return func(c *Connection) {
		c.httpClient = client
	}
}

// WithAdapter replaces the transport adapter.
func WithAdapter(sender httpclient.Sender) ConnectionOption {
	return func(c *Connection) {
		c.sender = sender
	}
}

// Call describes one API round trip.
type Call struct {
	Method        string            // GET when empty
	Endpoint      string            // relative to the base address, or absolute
	Parameters    map[string]string // merged into the query string
	Body          any
	Headers       http.Header // override configured headers
	TwoFactorCode string      // sent as X-GitHub-OTP
	Accepts       string      // Accept override
	ContentType   string      // body content type, form encoded when empty
	IfNoneMatch   string      // ETag for a conditional request
	Timeout       time.Duration
}

// NewConnection validates cfg and creates a connection.
func NewConnection(cfg Config, opts ...ConnectionOption) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := cfg.baseURL()
	if err != nil {
		return nil, err
	}
	headers := make(map[string]string, len(cfg.DefaultHeaders))
	for k, v := range cfg.DefaultHeaders {
		headers[k] = v
	}
	cfg.DefaultHeaders = headers

	c := &Connection{
		config:   cfg,
		base:     base,
		pipeline: NewJSONPipeline(cfg.mediaType()),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sender == nil {
		c.sender = httpclient.NewAdapter(httpclient.ClientOptions{
			HTTPClient:            c.httpClient,
			DisableCertValidation: cfg.DisableCertValidation,
		})
	}
	return c, nil
}

// BaseAddress returns a copy of the address relative endpoints are resolved against.
func (c *Connection) BaseAddress() *url.URL {
	u := *c.base
	return &u
}

// Send performs one round trip and classifies the terminal response. The response and its
// ApiInfo are returned with classified errors too, so callers can inspect them.
func (c *Connection) Send(ctx context.Context, call Call) (*httpclient.Response, *ApiInfo, error) {
	ctx, _ = logtrace.WithRequestID(ctx)
	req, err := c.buildRequest(call)
	if err != nil {
		return nil, nil, err
	}
	req, err = c.pipeline.SerializeRequest(req)
	if err != nil {
		return nil, nil, err
	}
	rsp, err := c.sender.Send(ctx, req)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("method", call.Method).Str("endpoint", call.Endpoint).Msg("github call failed")
		return nil, nil, err
	}
	info := ParseApiInfo(rsp.Headers)
	c.setLastApiInfo(info)

	log.Ctx(ctx).Debug().
		Str("method", req.Method).
		Str("url", urlString(rsp.URL)).
		Int("status", rsp.StatusCode).
		Int("rate_remaining", info.RateLimit.Remaining).
		Str("github_request_id", rsp.Headers.Get("X-GitHub-Request-Id")).
		Msg("github call")

	if err := classify(rsp, info); err != nil {
		return rsp, info, err
	}
	return rsp, info, nil
}

// LastApiInfo returns a copy of the metadata of the most recent response, or nil.
func (c *Connection) LastApiInfo() *ApiInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastInfo.Clone()
}

func (c *Connection) setLastApiInfo(info *ApiInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastInfo = info.Clone()
}

func (c *Connection) buildRequest(call Call) (*httpclient.Request, error) {
	if call.Endpoint == "" {
		return nil, httpclient.ErrInvalidRequest.New("endpoint is required")
	}
	method := call.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := httpclient.NewRequest(method, c.base, call.Endpoint)
	if err != nil {
		return nil, err
	}
	if len(call.Parameters) > 0 {
		q := req.Endpoint.Query()
		for k, v := range call.Parameters {
			q.Set(k, v)
		}
		req.Endpoint.RawQuery = q.Encode()
	}

	req.Headers.Set("User-Agent", c.config.UserAgent)
	if auth := c.config.Credentials.AuthorizationHeader(); auth != "" {
		req.Headers.Set("Authorization", auth)
	}
	for k, v := range c.config.DefaultHeaders {
		req.Headers.Set(k, v)
	}
	for k, values := range call.Headers {
		req.Headers.Del(k)
		for _, v := range values {
			req.Headers.Add(k, v)
		}
	}
	if call.Accepts != "" {
		req.Headers.Set("Accept", call.Accepts)
	}
	if call.TwoFactorCode != "" {
		req.Headers.Set(otpHeader, call.TwoFactorCode)
	}
	if call.IfNoneMatch != "" {
		req.Headers.Set("If-None-Match", call.IfNoneMatch)
	}

	req.Body = call.Body
	if req.Body != nil {
		req.ContentType = call.ContentType
		if req.ContentType == "" {
			if req.IsStream() {
				return nil, httpclient.ErrInvalidRequest.New("a stream body requires a content type")
			}
			req.ContentType = DefaultContentType
		}
	}
	req.Timeout = call.Timeout
	if req.Timeout == 0 {
		req.Timeout = c.config.Timeout
	}
	return req, nil
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
