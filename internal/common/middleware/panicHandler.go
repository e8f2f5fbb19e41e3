package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/tansive/ghrest/internal/common/httpx"
	"github.com/tansive/ghrest/internal/common/logtrace"
)

// PanicHandler turns a panicking handler into the 500 document GitHub sends for internal
// failures. The message names the request ID so a failing test can be matched with the
// logged stack. Mount it after RequestLogger; without a request ID only "Server Error" is sent.
func PanicHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := httpx.NewResponseWriter(w)
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			requestID := logtrace.RequestIDFromContext(r.Context())
			log.Ctx(r.Context()).Error().
				Str("github_request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("panic", fmt.Sprint(v)).
				Bytes("stack_trace", debug.Stack()).
				Msg("fake api handler panicked")

			if rw.Written() {
				return
			}
			msg := "Server Error"
			if requestID != "" {
				msg += " (request " + requestID + ")"
			}
			httpx.ErrApplicationError(msg).Send(rw)
		}()
		next.ServeHTTP(rw, r)
	})
}
