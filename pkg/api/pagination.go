package api

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/tansive/ghrest/internal/common/httpclient"
	"github.com/tidwall/gjson"
)

// PageOptions limits pagination. Zero fields are unset.
type PageOptions struct {
	PageSize  int `validate:"gte=0"` // sent as per_page
	PageCount int `validate:"gte=0"` // maximum number of pages fetched
	StartPage int `validate:"gte=0"` // sent as page
}

// Validate checks that no option is negative.
func (o PageOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		return httpclient.ErrInvalidRequest.MsgErr(fmt.Sprintf("invalid page options %+v", o), err)
	}
	return nil
}

// StartURI returns the URI of the first page: endpoint with params, per_page and page
// applied. It returns nil when endpoint is empty or cannot be parsed.
func StartURI(endpoint string, params map[string]string, opts PageOptions) *url.URL {
	if endpoint == "" {
		return nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil
	}
	if len(params) == 0 && opts.PageSize <= 0 && opts.StartPage <= 0 {
		return u
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	if opts.PageSize > 0 {
		q.Set("per_page", strconv.Itoa(opts.PageSize))
	}
	if opts.StartPage > 0 {
		q.Set("page", strconv.Itoa(opts.StartPage))
	}
	u.RawQuery = q.Encode()
	return u
}

// ShouldContinue reports whether the page at next should be fetched after pagesFetched
// pages. With a page count set, the page number in next is compared with the first page
// past the window, which starts at opts.StartPage (page 1 when unset); links without a
// page parameter fall back to counting round trips.
func ShouldContinue(ctx context.Context, next *url.URL, opts PageOptions, pagesFetched int) bool {
	if next == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return false
	}
	if opts.PageCount <= 0 {
		return true
	}
	if pagesFetched >= opts.PageCount {
		return false
	}
	page, err := strconv.Atoi(next.Query().Get("page"))
	if err != nil {
		return true
	}
	start := opts.StartPage
	if start <= 0 {
		start = 1
	}
	return page < start+opts.PageCount
}

type pageFetcher[T any] func(ctx context.Context, u *url.URL) ([]T, *ApiInfo, error)

// Sequence is a lazy, finite list of items spread over pages. Pages are fetched in order
// and only when a cursor needs an item that has not been fetched yet. Fetched items are
// kept, so cursors created later replay them without network calls.
type Sequence[T any] struct {
	mu    sync.Mutex
	fetch pageFetcher[T]
	opts  PageOptions
	next  *url.URL
	items []T
	pages int
	done  bool
	err   error
	info  *ApiInfo
}

func newSequence[T any](start *url.URL, opts PageOptions, fetch pageFetcher[T]) *Sequence[T] {
	return &Sequence[T]{fetch: fetch, opts: opts, next: start, done: start == nil}
}

func failedSequence[T any](err error) *Sequence[T] {
	return &Sequence[T]{done: true, err: err}
}

// fill makes sure the item at index have exists, fetching one more page when needed.
// It reports false when no further item will appear. Cancellation of ctx is returned
// but leaves the sequence resumable; request failures end it.
func (s *Sequence[T]) fill(ctx context.Context, have int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if have < len(s.items) {
		return true, nil
	}
	if s.err != nil {
		return false, s.err
	}
	if s.done {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s.pages > 0 && !ShouldContinue(ctx, s.next, s.opts, s.pages) {
		s.done = true
		return false, nil
	}
	items, info, err := s.fetch(ctx, s.next)
	if err != nil {
		if ctx.Err() != nil {
			return false, err
		}
		s.err = err
		s.done = true
		return false, err
	}
	s.pages++
	s.items = append(s.items, items...)
	s.info = info
	s.next = info.NextPage()
	if s.next == nil {
		s.done = true
	}
	return true, nil
}

func (s *Sequence[T]) at(i int) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < len(s.items) {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Cursor returns a new cursor positioned before the first item.
func (s *Sequence[T]) Cursor() *Cursor[T] {
	return &Cursor[T]{seq: s}
}

// All returns an iterator over the items. A failure is yielded once, as the last pair.
func (s *Sequence[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		c := s.Cursor()
		for c.Next(ctx) {
			if !yield(c.Value(), nil) {
				return
			}
		}
		if err := c.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// Collect enumerates the whole sequence. On failure it returns the items read so far
// together with the error.
func (s *Sequence[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	c := s.Cursor()
	for c.Next(ctx) {
		out = append(out, c.Value())
	}
	return out, c.Err()
}

// Items returns a copy of the items fetched so far.
func (s *Sequence[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...)
}

// Done reports whether no more pages will be fetched.
func (s *Sequence[T]) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// PagesFetched returns the number of completed round trips.
func (s *Sequence[T]) PagesFetched() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages
}

// LastApiInfo returns a copy of the metadata of the last page fetched, or nil.
func (s *Sequence[T]) LastApiInfo() *ApiInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info.Clone()
}

// Cursor reads a Sequence one item at a time. A cursor is not safe for concurrent use,
// but any number of cursors may read the same sequence.
type Cursor[T any] struct {
	seq *Sequence[T]
	pos int
	cur T
	err error
}

// Next advances to the next item, fetching a page if necessary.
func (c *Cursor[T]) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	for {
		if v, ok := c.seq.at(c.pos); ok {
			c.cur = v
			c.pos++
			return true
		}
		more, err := c.seq.fill(ctx, c.pos)
		if err != nil {
			c.err = err
			return false
		}
		if !more {
			return false
		}
	}
}

// Value returns the current item.
func (c *Cursor[T]) Value() T {
	return c.cur
}

// Err returns the error that stopped the cursor, if any.
func (c *Cursor[T]) Err() error {
	return c.err
}

// Paginate returns the lazy sequence of items of a list endpoint. The call's endpoint and
// parameters describe the first page; later pages follow the "next" link.
func Paginate[T any](c *Connection, call Call, opts PageOptions) *Sequence[T] {
	return paginate(c, call, opts, func(ctx context.Context, pc Call) ([]T, *ApiInfo, error) {
		rsp, err := Do[[]T](ctx, c, pc)
		if err != nil {
			return nil, nil, err
		}
		return rsp.Body, rsp.ApiInfo, nil
	})
}

// GetAll is Paginate for a GET endpoint.
func GetAll[T any](c *Connection, endpoint string, params map[string]string, opts PageOptions) *Sequence[T] {
	return Paginate[T](c, Call{Method: http.MethodGet, Endpoint: endpoint, Parameters: params}, opts)
}

// PaginateField paginates endpoints that wrap each page in an object, such as search
// results ({"total_count": 3, "items": [...]}). field is a gjson path to the list.
func PaginateField[T any](c *Connection, call Call, opts PageOptions, field string) *Sequence[T] {
	return paginate(c, call, opts, func(ctx context.Context, pc Call) ([]T, *ApiInfo, error) {
		raw, info, err := c.Send(ctx, pc)
		if err != nil {
			return nil, nil, err
		}
		if !IsJSONMediaType(raw.ContentType) {
			return nil, info, nil
		}
		list := gjson.GetBytes(raw.BodyBytes(), field)
		if !list.Exists() {
			return nil, info, nil
		}
		if !list.IsArray() {
			return nil, nil, ErrParse.New(fmt.Sprintf("field %q is not a list", field))
		}
		var items []T
		if err := json.Unmarshal([]byte(list.Raw), &items); err != nil {
			return nil, nil, ErrParse.MsgErr(fmt.Sprintf("unable to decode field %q", field), err)
		}
		return items, info, nil
	})
}

func paginate[T any](c *Connection, call Call, opts PageOptions, fetch func(context.Context, Call) ([]T, *ApiInfo, error)) *Sequence[T] {
	if err := opts.Validate(); err != nil {
		return failedSequence[T](err)
	}
	start := StartURI(call.Endpoint, call.Parameters, opts)
	if start != nil && opts.StartPage <= 0 {
		// a page given in the endpoint or parameters starts the window
		if p, err := strconv.Atoi(start.Query().Get("page")); err == nil && p > 0 {
			opts.StartPage = p
		}
	}
	return newSequence(start, opts, func(ctx context.Context, u *url.URL) ([]T, *ApiInfo, error) {
		pc := call
		pc.Endpoint = u.String()
		pc.Parameters = nil
		return fetch(ctx, pc)
	})
}
