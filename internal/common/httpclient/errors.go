package httpclient

import (
	"github.com/tansive/ghrest/internal/common/apperrors"
)

var (
	// ErrTransport reports that no HTTP response could be obtained.
	ErrTransport = apperrors.New("transport failure")
	// ErrRedirectLoop reports a redirect chain longer than MaxRedirects. It is an ErrTransport.
	ErrRedirectLoop = ErrTransport.New("redirect loop")
	// ErrInvalidRequest reports a request that cannot be turned into an HTTP exchange.
	ErrInvalidRequest = apperrors.New("invalid request")
)
