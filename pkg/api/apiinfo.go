package api

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Link relations used for pagination.
const (
	RelFirst = "first"
	RelPrev  = "prev"
	RelNext  = "next"
	RelLast  = "last"
)

// ApiInfo is the metadata GitHub returns in response headers. It is never changed after
// ParseApiInfo returns it.
type ApiInfo struct {
	Links                map[string]*url.URL
	OAuthScopes          []string
	AcceptedOAuthScopes  []string
	Etag                 string
	RateLimit            RateLimit
	ServerTimeDifference time.Duration // server clock minus local clock, from the Date header
}

// RateLimit is the primary rate limit state of the credentials used for a request.
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// ResetAsUTCEpochSeconds returns the reset time as Unix seconds.
func (r RateLimit) ResetAsUTCEpochSeconds() int64 {
	return r.Reset.Unix()
}

var linkEntry = regexp.MustCompile(`^<([^<>\s]+)>\s*;\s*rel="([^"]+)"`)

// ParseApiInfo extracts metadata from response headers. Missing or malformed headers
// yield zero values; it never fails.
func ParseApiInfo(h http.Header) *ApiInfo {
	info := &ApiInfo{
		Links:               parseLinks(h.Values("Link")),
		OAuthScopes:         splitScopes(h.Get("X-OAuth-Scopes")),
		AcceptedOAuthScopes: splitScopes(h.Get("X-Accepted-OAuth-Scopes")),
		Etag:                h.Get("ETag"),
		RateLimit:           ParseRateLimit(h),
	}
	if d := h.Get("Date"); d != "" {
		if t, err := http.ParseTime(d); err == nil {
			info.ServerTimeDifference = time.Until(t)
		}
	}
	return info
}

// ParseRateLimit reads the X-RateLimit-* headers. Each header falls back on its own: a
// missing or malformed count is 0 and a missing or malformed reset is the Unix epoch.
func ParseRateLimit(h http.Header) RateLimit {
	rl := RateLimit{
		Limit:     headerInt(h, "X-RateLimit-Limit"),
		Remaining: headerInt(h, "X-RateLimit-Remaining"),
		Reset:     time.Unix(0, 0).UTC(),
	}
	if reset, err := strconv.ParseInt(strings.TrimSpace(h.Get("X-RateLimit-Reset")), 10, 64); err == nil {
		rl.Reset = time.Unix(reset, 0).UTC()
	}
	return rl
}

func headerInt(h http.Header, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(h.Get(name)))
	if err != nil {
		return 0
	}
	return n
}

// FirstPage returns the "first" link or nil.
func (a *ApiInfo) FirstPage() *url.URL { return a.link(RelFirst) }

// PreviousPage returns the "prev" link or nil.
func (a *ApiInfo) PreviousPage() *url.URL { return a.link(RelPrev) }

// NextPage returns the "next" link or nil.
func (a *ApiInfo) NextPage() *url.URL { return a.link(RelNext) }

// LastPage returns the "last" link or nil.
func (a *ApiInfo) LastPage() *url.URL { return a.link(RelLast) }

func (a *ApiInfo) link(rel string) *url.URL {
	if a == nil {
		return nil
	}
	u := a.Links[rel]
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

// Clone returns a deep copy.
func (a *ApiInfo) Clone() *ApiInfo {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Links = make(map[string]*url.URL, len(a.Links))
	for rel, u := range a.Links {
		uc := *u
		cp.Links[rel] = &uc
	}
	cp.OAuthScopes = append([]string{}, a.OAuthScopes...)
	cp.AcceptedOAuthScopes = append([]string{}, a.AcceptedOAuthScopes...)
	return &cp
}

func splitScopes(v string) []string {
	scopes := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

func parseLinks(values []string) map[string]*url.URL {
	links := make(map[string]*url.URL)
	for _, v := range values {
		for _, entry := range splitLinkEntries(v) {
			m := linkEntry.FindStringSubmatch(strings.TrimSpace(entry))
			if m == nil {
				continue
			}
			u, err := url.Parse(m[1])
			if err != nil || !u.IsAbs() {
				continue
			}
			links[m[2]] = u
		}
	}
	return links
}

// splitLinkEntries splits a Link header on the commas that separate entries, ignoring
// commas inside <...>.
func splitLinkEntries(v string) []string {
	var entries []string
	depth, start := 0, 0
	for i, r := range v {
		switch r {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				entries = append(entries, v[start:i])
				start = i + 1
			}
		}
	}
	return append(entries, v[start:])
}
