// Package middleware provides HTTP middleware for the in-process fake API: request
// logging with request IDs and panic recovery. It integrates with zerolog.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tansive/ghrest/internal/common/httpx"
	"github.com/tansive/ghrest/internal/common/logtrace"
)

// RequestIDHeader carries the request ID back to the client, as the GitHub API does.
const RequestIDHeader = "X-GitHub-Request-Id"

// RequestLogger logs every request with its status and duration and tags the request
// context and the response with a request ID.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, requestID := logtrace.WithRequestID(r.Context())
		w.Header().Set(RequestIDHeader, requestID)

		rw := httpx.NewResponseWriter(w)
		log.Ctx(ctx).Debug().
			Str("requestMethod", r.Method).
			Str("requestURI", r.RequestURI).
			Str("remoteIP", r.RemoteAddr).
			Msg("incoming request")

		defer func() {
			log.Ctx(ctx).Debug().
				Int("status", rw.Status()).
				Str("duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds())).
				Msg("request completed")
		}()

		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}
