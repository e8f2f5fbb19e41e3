package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// MaxRedirects is the redirect response count at which Send gives up with ErrRedirectLoop.
// Chains of MaxRedirects-1 redirects are followed.
const MaxRedirects = 3

// Adapter sends Requests over an http.Client. It holds no per-request state and is safe
// for concurrent use.
type Adapter struct {
	httpClient *http.Client
}

// ClientOptions contains options for configuring the adapter.
type ClientOptions struct {
	HTTPClient            *http.Client // optional base client; it is copied, not modified
	DisableCertValidation bool         // If true, skips TLS certificate validation
}

// NewAdapter creates an adapter. Redirects are never followed by the underlying client;
// the adapter follows them itself.
func NewAdapter(opts ...ClientOptions) *Adapter {
	var o ClientOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	httpClient := &http.Client{}
	if o.HTTPClient != nil {
		*httpClient = *o.HTTPClient
	}
	if o.DisableCertValidation {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Adapter{httpClient: httpClient}
}

// Send performs req and any redirects it triggers.
func (a *Adapter) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrInvalidRequest.New("nil request")
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	target, err := req.URL()
	if err != nil {
		return nil, err
	}
	originalHost := target.Host
	current := req
	redirects := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, ErrTransport.MsgErr("request cancelled", err)
		}
		httpReq, err := buildHTTPRequest(ctx, current, target)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		rsp, err := a.httpClient.Do(httpReq)
		if err != nil {
			return nil, ErrTransport.MsgErr(fmt.Sprintf("%s %s", httpReq.Method, target.Redacted()),
				errors.Wrap(err, "sending request"))
		}
		log.Ctx(ctx).Debug().
			Str("method", httpReq.Method).
			Str("url", target.Redacted()).
			Int("status", rsp.StatusCode).
			Str("duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds())).
			Msg("http round trip")

		location := rsp.Header.Get("Location")
		if !isRedirect(rsp.StatusCode) || location == "" {
			return readResponse(rsp, target)
		}
		drain(rsp)

		redirects++
		if redirects >= MaxRedirects {
			return nil, ErrRedirectLoop.Msg(fmt.Sprintf("the redirect count for %s %s reached the maximum of %d",
				req.method(), target.Redacted(), MaxRedirects))
		}
		next, nextURL, err := redirectRequest(current, target, rsp.StatusCode, location, originalHost)
		if err != nil {
			return nil, err
		}
		log.Ctx(ctx).Debug().
			Int("status", rsp.StatusCode).
			Str("location", nextURL.Redacted()).
			Int("redirects", redirects).
			Msg("following redirect")
		current, target = next, nextURL
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// redirectRequest builds the request for the next hop. 303 turns into a body-less GET;
// every other redirect keeps method and body. Credentials only travel to the original host.
func redirectRequest(current *Request, from *url.URL, status int, location string, originalHost string) (*Request, *url.URL, error) {
	nextURL, err := from.Parse(location)
	if err != nil {
		return nil, nil, ErrTransport.MsgErr(fmt.Sprintf("invalid redirect location %q", location), err)
	}

	next := current.Clone()
	next.Endpoint = cloneURL(nextURL)

	if status == http.StatusSeeOther {
		next.Method = http.MethodGet
		next.Body = nil
		next.ContentType = ""
		next.Headers.Del("Content-Type")
	} else if next.IsStream() {
		if _, ok := next.Body.(io.Seeker); !ok {
			return nil, nil, ErrInvalidRequest.New("stream body cannot be replayed on redirect")
		}
	}

	if !strings.EqualFold(nextURL.Host, originalHost) {
		next.Headers.Del("Authorization")
	}
	return next, nextURL, nil
}

func buildHTTPRequest(ctx context.Context, req *Request, target *url.URL) (*http.Request, error) {
	body, err := bodyReader(req.Body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method(), target.String(), body)
	if err != nil {
		return nil, ErrInvalidRequest.MsgErr("unable to create request", err)
	}
	for k, v := range req.Headers {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	if req.Body != nil && req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	return httpReq, nil
}

func bodyReader(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	case url.Values:
		return strings.NewReader(b.Encode()), nil
	case io.ReadSeeker:
		if _, err := b.Seek(0, io.SeekStart); err != nil {
			return nil, ErrInvalidRequest.MsgErr("unable to rewind request body", err)
		}
		return io.NopCloser(b), nil
	case io.Reader:
		return io.NopCloser(b), nil
	}
	return nil, ErrInvalidRequest.New(fmt.Sprintf("unsupported body type %T; serialise it first", body))
}

func readResponse(rsp *http.Response, target *url.URL) (*Response, error) {
	defer rsp.Body.Close()
	data, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, ErrTransport.MsgErr("failed to read response body", err)
	}
	contentType := rsp.Header.Get("Content-Type")
	r := &Response{
		StatusCode:  rsp.StatusCode,
		Headers:     rsp.Header.Clone(),
		ContentType: contentType,
		URL:         target,
	}
	if isBinary(contentType, data) {
		r.Body = data
	} else {
		r.Body = string(data)
	}
	return r, nil
}

func drain(rsp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rsp.Body, 64<<10))
	rsp.Body.Close()
}
