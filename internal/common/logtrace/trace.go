package logtrace

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tansive/ghrest/internal/common/uuid"
)

type requestIDKey struct{}

// WithRequestID returns a context carrying a request ID and a logger tagged with it.
// If ctx already carries one it is returned unchanged.
func WithRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := newRequestID()
	ctx = context.WithValue(ctx, requestIDKey{}, id)
	ctx = log.Ctx(ctx).With().Str("request_id", id).Logger().WithContext(ctx)
	return ctx, id
}

// RequestIDFromContext extracts the request ID from the context.
// Returns an empty string if the context is nil or if no request ID is found.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	r, ok := ctx.Value(requestIDKey{}).(string)
	if !ok {
		return ""
	}
	return r
}

func newRequestID() string {
	u, err := uuid.NewRandom()
	if err == nil {
		return u.String()
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}
