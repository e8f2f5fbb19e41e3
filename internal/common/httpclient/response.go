package httpclient

import (
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/h2non/filetype"
)

// Response is the transport level view of an HTTP response.
type Response struct {
	StatusCode  int
	Headers     http.Header
	Body        any // string for textual payloads, []byte for binary ones
	ContentType string
	URL         *url.URL // final URL after redirects
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// BodyString returns the body as text regardless of how it was stored.
func (r *Response) BodyString() string {
	switch b := r.Body.(type) {
	case string:
		return b
	case []byte:
		return string(b)
	}
	return ""
}

// BodyBytes returns the body as bytes regardless of how it was stored.
func (r *Response) BodyBytes() []byte {
	switch b := r.Body.(type) {
	case string:
		return []byte(b)
	case []byte:
		return b
	}
	return nil
}

// MediaType returns the lower-cased media type of the response without parameters.
func (r *Response) MediaType() string {
	return MediaType(r.ContentType)
}

// MediaType returns the lower-cased media type of contentType without parameters.
func MediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

var binaryMediaTypes = map[string]struct{}{
	"application/octet-stream":     {},
	"application/zip":              {},
	"application/gzip":             {},
	"application/x-gzip":           {},
	"application/x-tar":            {},
	"application/pdf":              {},
	"application/x-zip-compressed": {},
}

// isBinary decides whether a payload is kept as bytes. Without a content type the payload
// itself is sniffed.
func isBinary(contentType string, data []byte) bool {
	mt := MediaType(contentType)
	if mt == "" {
		if len(data) == 0 {
			return false
		}
		kind, err := filetype.Match(data)
		return err == nil && kind != filetype.Unknown
	}
	if strings.HasPrefix(mt, "text/") {
		return false
	}
	for _, prefix := range []string{"image/", "audio/", "video/", "font/"} {
		if strings.HasPrefix(mt, prefix) {
			return true
		}
	}
	_, ok := binaryMediaTypes[mt]
	return ok
}
