package httpclient

import (
	"context"
)

// Sender sends a single logical request, following redirects, and returns the terminal
// response. Non-success status codes are returned as responses, not errors.
type Sender interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

var _ Sender = &Adapter{}
