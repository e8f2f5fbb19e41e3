// Package httpx writes responses the way the GitHub REST API does: JSON bodies, error
// documents with message and documentation_url, Link pagination headers and the rate
// limit header set. It backs the in-process fake API the client is tested against.
package httpx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsonitor "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/tansive/ghrest/internal/common/logtrace"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

// MediaTypeJSON is the content type of every JSON document the API returns.
const MediaTypeJSON = "application/json; charset=utf-8"

// SendJSON writes msg as a JSON response. Strings and byte slices holding valid JSON are
// written as they are; anything else is marshalled.
func SendJSON(ctx context.Context, w http.ResponseWriter, statusCode int, msg any) {
	var body []byte
	switch m := msg.(type) {
	case string:
		body = []byte(m)
	case []byte:
		body = m
	default:
		var err error
		body, err = json.Marshal(msg)
		if err != nil {
			log.Ctx(ctx).Err(err).Msg("unable to marshal json")
			ErrApplicationError("request " + logtrace.RequestIDFromContext(ctx)).Send(w)
			return
		}
	}
	if !json.Valid(body) {
		ErrApplicationError("invalid json document").Send(w)
		return
	}
	w.Header().Set("Content-Type", MediaTypeJSON)
	w.WriteHeader(statusCode)
	w.Write(body)
}

// SendText writes a plain text response.
func SendText(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	w.Write([]byte(text))
}

// PageLinks computes the first/prev/next/last relations for page of lastPage and writes
// them as a Link header. Every other query parameter of u is kept, and the page parameter
// keeps its position in the query string.
func PageLinks(w http.ResponseWriter, u *url.URL, page, lastPage int) {
	if lastPage <= 1 {
		return
	}
	link := func(p int) string {
		return "<" + withPage(u, p) + ">"
	}
	var parts []string
	if page > 1 {
		parts = append(parts, link(1)+`; rel="first"`, link(page-1)+`; rel="prev"`)
	}
	if page < lastPage {
		parts = append(parts, link(page+1)+`; rel="next"`, link(lastPage)+`; rel="last"`)
	}
	if len(parts) > 0 {
		w.Header().Set("Link", strings.Join(parts, ", "))
	}
}

func withPage(u *url.URL, page int) string {
	cp := *u
	var pairs []string
	replaced := false
	if cp.RawQuery != "" {
		for _, pair := range strings.Split(cp.RawQuery, "&") {
			if k, _, _ := strings.Cut(pair, "="); k == "page" {
				pair = "page=" + strconv.Itoa(page)
				replaced = true
			}
			pairs = append(pairs, pair)
		}
	}
	if !replaced {
		pairs = append(pairs, "page="+strconv.Itoa(page))
	}
	cp.RawQuery = strings.Join(pairs, "&")
	return cp.String()
}

// RateLimit writes the X-RateLimit-* header set.
func RateLimit(w http.ResponseWriter, limit, remaining int, reset time.Time) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))
}
