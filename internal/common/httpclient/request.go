// Package httpclient is the transport adapter of the GitHub client pipeline. It turns a
// Request value into an HTTP exchange, follows redirects itself so that method, body and
// credential handling across hops is explicit, and converts what comes back into a
// Response value. It never interprets status codes; classification happens one layer up.
package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Request describes one outbound HTTP request. Requests are treated as values: the
// pipeline derives new requests (serialised body, redirect hops) with Clone and never
// modifies one it was handed.
type Request struct {
	Method      string        // HTTP method, defaults to GET when empty
	BaseAddress *url.URL      // address relative endpoints are resolved against
	Endpoint    *url.URL      // relative to BaseAddress unless absolute
	Headers     http.Header   // keys are canonicalised, so unique case-insensitively
	Body        any           // nil, string, []byte, io.Reader, url.Values or an object to serialise
	ContentType string        // Content-Type sent with a non-nil body
	Timeout     time.Duration // per request timeout, 0 means none
}

// NewRequest creates a request for endpoint relative to base. Endpoint may be absolute.
func NewRequest(method string, base *url.URL, endpoint string) (*Request, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, ErrInvalidRequest.MsgErr(fmt.Sprintf("invalid endpoint %q", endpoint), err)
	}
	return &Request{
		Method:      method,
		BaseAddress: base,
		Endpoint:    u,
		Headers:     make(http.Header),
	}, nil
}

// URL returns the absolute URL of the request.
func (r *Request) URL() (*url.URL, error) {
	if r.Endpoint == nil {
		return nil, ErrInvalidRequest.New("request has no endpoint")
	}
	if r.Endpoint.IsAbs() {
		return cloneURL(r.Endpoint), nil
	}
	if r.BaseAddress == nil || !r.BaseAddress.IsAbs() {
		return nil, ErrInvalidRequest.New(fmt.Sprintf("relative endpoint %q requires an absolute base address", r.Endpoint))
	}
	return r.BaseAddress.ResolveReference(r.Endpoint), nil
}

// Clone returns a copy of r whose headers and URLs can be changed without affecting r.
// The body is shared.
func (r *Request) Clone() *Request {
	cp := *r
	cp.Headers = r.Headers.Clone()
	if cp.Headers == nil {
		cp.Headers = make(http.Header)
	}
	cp.BaseAddress = cloneURL(r.BaseAddress)
	cp.Endpoint = cloneURL(r.Endpoint)
	return &cp
}

func (r *Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// IsStream reports whether the body is a reader rather than an in-memory value.
func (r *Request) IsStream() bool {
	if r.Body == nil {
		return false
	}
	switch r.Body.(type) {
	case string, []byte, url.Values:
		return false
	case io.Reader:
		return true
	}
	return false
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	cp := *u
	if u.User != nil {
		user := *u.User
		cp.User = &user
	}
	return &cp
}
