package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tansive/ghrest/internal/common/httpclient"
)

// PageFetcher fetches the page at an absolute URI.
type PageFetcher[T any] func(ctx context.Context, u *url.URL) (*Response[[]T], error)

// PagedCollection is one page of a list endpoint with a way to fetch the next one.
type PagedCollection[T any] struct {
	items []T
	info  *ApiInfo
	fetch PageFetcher[T]
}

// NewPagedCollection wraps a page. A nil response or body gives an empty collection
// without a next page.
func NewPagedCollection[T any](rsp *Response[[]T], fetch PageFetcher[T]) *PagedCollection[T] {
	pc := &PagedCollection[T]{fetch: fetch}
	if rsp != nil {
		pc.items = rsp.Body
		pc.info = rsp.ApiInfo
	}
	return pc
}

// Items returns a copy of the items of this page.
func (p *PagedCollection[T]) Items() []T {
	return append([]T(nil), p.items...)
}

// Len returns the number of items on this page.
func (p *PagedCollection[T]) Len() int {
	return len(p.items)
}

// ApiInfo returns a copy of the metadata of this page, or nil.
func (p *PagedCollection[T]) ApiInfo() *ApiInfo {
	return p.info.Clone()
}

// HasNextPage reports whether the page carries a "next" link.
func (p *PagedCollection[T]) HasNextPage() bool {
	return p.info.NextPage() != nil
}

// GetNextPage fetches the page after this one. It returns nil and no error on the last page.
func (p *PagedCollection[T]) GetNextPage(ctx context.Context) (*PagedCollection[T], error) {
	next := p.info.NextPage()
	if next == nil || p.fetch == nil {
		return nil, nil
	}
	rsp, err := p.fetch(ctx, next)
	if err != nil {
		return nil, err
	}
	return NewPagedCollection(rsp, p.fetch), nil
}

// GetPage fetches the first page of a list endpoint as a collection.
func GetPage[T any](ctx context.Context, c *Connection, endpoint string, params map[string]string, opts PageOptions) (*PagedCollection[T], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start := StartURI(endpoint, params, opts)
	if start == nil {
		return nil, httpclient.ErrInvalidRequest.New(fmt.Sprintf("invalid endpoint %q", endpoint))
	}
	fetch := func(ctx context.Context, u *url.URL) (*Response[[]T], error) {
		return Do[[]T](ctx, c, Call{Method: http.MethodGet, Endpoint: u.String()})
	}
	rsp, err := fetch(ctx, start)
	if err != nil {
		return nil, err
	}
	return NewPagedCollection(rsp, fetch), nil
}
