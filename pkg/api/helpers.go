package api

import (
	"context"
	"net/http"

	"github.com/tansive/ghrest/internal/common/httpclient"
)

// Response is a classified, decoded API response.
type Response[T any] struct {
	Raw     *httpclient.Response
	ApiInfo *ApiInfo
	Body    T
	Parsed  bool // false when the body was not JSON, empty, or the response was 304
}

// Do sends call and decodes the response body into T.
func Do[T any](ctx context.Context, c *Connection, call Call) (*Response[T], error) {
	raw, info, err := c.Send(ctx, call)
	if err != nil {
		return nil, err
	}
	out := &Response[T]{Raw: raw, ApiInfo: info}
	if raw.StatusCode == http.StatusNotModified {
		return out, nil
	}
	out.Body, out.Parsed, err = DeserializeResponse[T](raw)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches endpoint with query parameters.
func Get[T any](ctx context.Context, c *Connection, endpoint string, params map[string]string) (*Response[T], error) {
	return Do[T](ctx, c, Call{Method: http.MethodGet, Endpoint: endpoint, Parameters: params})
}

// Post sends body to endpoint.
func Post[T any](ctx context.Context, c *Connection, endpoint string, body any) (*Response[T], error) {
	return Do[T](ctx, c, Call{Method: http.MethodPost, Endpoint: endpoint, Body: body})
}

// Put sends body to endpoint.
func Put[T any](ctx context.Context, c *Connection, endpoint string, body any) (*Response[T], error) {
	return Do[T](ctx, c, Call{Method: http.MethodPut, Endpoint: endpoint, Body: body})
}

// Patch sends body to endpoint.
func Patch[T any](ctx context.Context, c *Connection, endpoint string, body any) (*Response[T], error) {
	return Do[T](ctx, c, Call{Method: http.MethodPatch, Endpoint: endpoint, Body: body})
}

// Delete deletes the resource at endpoint.
func Delete(ctx context.Context, c *Connection, endpoint string) (*httpclient.Response, error) {
	raw, _, err := c.Send(ctx, Call{Method: http.MethodDelete, Endpoint: endpoint})
	return raw, err
}

// GetRaw fetches endpoint without decoding the body. accepts overrides the Accept header
// when not empty, for media types such as application/vnd.github.raw.
func GetRaw(ctx context.Context, c *Connection, endpoint string, params map[string]string, accepts string) (*httpclient.Response, error) {
	raw, _, err := c.Send(ctx, Call{Method: http.MethodGet, Endpoint: endpoint, Parameters: params, Accepts: accepts})
	return raw, err
}
