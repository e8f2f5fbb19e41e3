package apitest

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/tansive/ghrest/internal/common/httpx"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ResetTime is the fixed X-RateLimit-Reset the fake reports.
var ResetTime = time.Unix(1372700873, 0).UTC()

func (s *Server) commonHeaders(w http.ResponseWriter) {
	httpx.RateLimit(w, RateLimitLimit, s.rateRemaining(), ResetTime)
	w.Header().Set("X-OAuth-Scopes", "repo, user")
	w.Header().Set("X-Accepted-OAuth-Scopes", "repo")
	w.Header().Set("Date", time.Now().UTC().Format(http.TimeFormat))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.commonHeaders(w)
	switch r.Header.Get("Authorization") {
	case "token " + GoodToken:
	case "token " + OTPToken:
		if r.Header.Get("X-GitHub-OTP") != OTPCode {
			w.Header().Set("X-GitHub-OTP", "required; app")
			httpx.ErrRequiresAuthentication().Send(w)
			return
		}
	case "":
		httpx.ErrRequiresAuthentication().Send(w)
		return
	default:
		httpx.ErrBadCredentials().Send(w)
		return
	}
	httpx.SendJSON(r.Context(), w, http.StatusOK, userJSON("octocat", 1))
}

func (s *Server) getRateLimit(w http.ResponseWriter, r *http.Request) {
	s.commonHeaders(w)
	core := fmt.Sprintf(`{"limit":%d,"remaining":%d,"reset":%d,"used":%d}`,
		RateLimitLimit, s.rateRemaining(), ResetTime.Unix(), RateLimitLimit-s.rateRemaining())
	body := `{"resources":{"core":` + core + `},"rate":` + core + `}`
	httpx.SendJSON(r.Context(), w, http.StatusOK, body)
}

// listIssues serves the issues of any repository, paged with per_page and page. Link
// URLs carry the page parameter last.
func (s *Server) listIssues(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := pageParams(w, r)
	if !ok {
		return
	}
	etag := fmt.Sprintf(`"issues-%d-%d"`, page, perPage)
	s.commonHeaders(w)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	from, to := pageBounds(page, perPage, s.issueCount)
	body := "[]"
	for n := from; n < to; n++ {
		body, _ = sjson.SetRaw(body, "-1", issueJSON(n+1))
	}
	httpx.PageLinks(w, linkBase(r), page, lastPage(s.issueCount, perPage))
	httpx.SendJSON(r.Context(), w, http.StatusOK, body)
}

func (s *Server) searchIssues(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := pageParams(w, r)
	if !ok {
		return
	}
	s.commonHeaders(w)
	from, to := pageBounds(page, perPage, s.issueCount)
	body := fmt.Sprintf(`{"total_count":%d,"incomplete_results":false,"items":[]}`, s.issueCount)
	for n := from; n < to; n++ {
		body, _ = sjson.SetRaw(body, "items.-1", issueJSON(n+1))
	}
	httpx.PageLinks(w, linkBase(r), page, lastPage(s.issueCount, perPage))
	httpx.SendJSON(r.Context(), w, http.StatusOK, body)
}

func (s *Server) getCommit(w http.ResponseWriter, r *http.Request) {
	s.commonHeaders(w)
	sha := chi.URLParam(r, "sha")
	if sha == "missing" {
		httpx.ErrNotFound().Send(w)
		return
	}
	body := `{}`
	body, _ = sjson.Set(body, "sha", sha)
	body, _ = sjson.Set(body, "message", "Initial commit")
	body, _ = sjson.SetRaw(body, "author", `{"name":"Mona","email":"mona@example.com","date":"2011-04-14T16:00:49Z"}`)
	body, _ = sjson.SetRaw(body, "committer", `{"name":"Mona","email":"mona@example.com","date":"2011-04-14T16:00:49Z"}`)
	body, _ = sjson.Set(body, "tree.sha", "691272480426f78a0138979dd3ce63b77f706feb")
	body, _ = sjson.SetRaw(body, "parents", `[{"sha":"1acc419d4d6a9ce985db7be48c6349a0475975b5"}]`)
	httpx.SendJSON(r.Context(), w, http.StatusOK, body)
}

// createTag accepts the flattened wire shape of a new tag only: "object" must be a SHA
// string and "type" a top level field.
func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	s.commonHeaders(w)
	s.mu.Lock()
	in := s.bodies[len(s.bodies)-1]
	s.mu.Unlock()
	object := gjson.Get(in, "object")
	typ := gjson.Get(in, "type")
	var errs []httpx.FieldError
	if object.Type != gjson.String {
		errs = append(errs, httpx.FieldError{Resource: "Tag", Field: "object", Code: "invalid"})
	}
	if typ.Type != gjson.String {
		errs = append(errs, httpx.FieldError{Resource: "Tag", Field: "type", Code: "missing_field"})
	}
	if len(errs) > 0 {
		httpx.ErrValidationFailed(errs...).Send(w)
		return
	}
	body := `{}`
	body, _ = sjson.Set(body, "sha", "940bd336248efae0f9ee5bc7b2d5c985887b16ac")
	body, _ = sjson.Set(body, "tag", gjson.Get(in, "tag").String())
	body, _ = sjson.Set(body, "message", gjson.Get(in, "message").String())
	body, _ = sjson.Set(body, "object.sha", object.String())
	body, _ = sjson.Set(body, "object.type", typ.String())
	httpx.SendJSON(r.Context(), w, http.StatusCreated, body)
}

func (s *Server) getReadme(w http.ResponseWriter, r *http.Request) {
	s.commonHeaders(w)
	if strings.Contains(r.Header.Get("Accept"), "raw") {
		httpx.SendText(w, http.StatusOK, "# Hello World\n")
		return
	}
	httpx.SendJSON(r.Context(), w, http.StatusOK, `{"name":"README.md","encoding":"base64","content":"IyBIZWxsbyBXb3JsZAo="}`)
}

// redirect answers /redirect/{n} with a 302 to /redirect/{n-1}; /redirect/0 is the target.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 0 {
		httpx.ErrNotFound().Send(w)
		return
	}
	if n == 0 {
		s.commonHeaders(w)
		httpx.SendJSON(r.Context(), w, http.StatusOK, `{"redirected":true}`)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/redirect/%d", n-1))
	w.WriteHeader(http.StatusFound)
}

func (s *Server) loop(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Location", "/loop")
	w.WriteHeader(http.StatusFound)
}

// sendError answers with the error document named by kind.
func (s *Server) sendError(w http.ResponseWriter, r *http.Request) {
	s.commonHeaders(w)
	kind := chi.URLParam(r, "kind")
	log.Ctx(r.Context()).Debug().Str("kind", kind).Msg("sending error document")
	switch kind {
	case "unauthorized":
		httpx.ErrBadCredentials().Send(w)
	case "otp-sms":
		w.Header().Set("X-GitHub-OTP", "required; sms")
		httpx.ErrRequiresAuthentication().Send(w)
	case "otp-app":
		w.Header().Set("X-GitHub-OTP", "required; app")
		httpx.ErrRequiresAuthentication().Send(w)
	case "validation":
		httpx.ErrValidationFailed(httpx.FieldError{Resource: "Issue", Field: "title", Code: "missing_field"}).Send(w)
	case "rate-limit":
		httpx.RateLimit(w, RateLimitLimit, 0, ResetTime)
		httpx.ErrRateLimitExceeded().Send(w)
	case "login-attempts":
		httpx.ErrLoginAttemptsExceeded().Send(w)
	case "secondary":
		w.Header().Set("Retry-After", "30")
		httpx.ErrSecondaryRateLimit().Send(w)
	case "forbidden":
		httpx.ErrForbidden("Resource not accessible by integration").Send(w)
	case "not-found":
		httpx.ErrNotFound().Send(w)
	case "server":
		httpx.ErrApplicationError("Server Error").Send(w)
	case "unavailable":
		httpx.SendText(w, http.StatusServiceUnavailable, "upstream unavailable")
	default:
		httpx.ErrNotFound().Send(w)
	}
}

func pageParams(w http.ResponseWriter, r *http.Request) (page, perPage int, ok bool) {
	page, perPage = 1, DefaultPerPage
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			httpx.ErrValidationFailed(httpx.FieldError{Resource: "Search", Field: "page", Code: "invalid"}).Send(w)
			return 0, 0, false
		}
		page = p
	}
	if v := q.Get("per_page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 || p > 100 {
			httpx.ErrValidationFailed(httpx.FieldError{Resource: "Search", Field: "per_page", Code: "invalid"}).Send(w)
			return 0, 0, false
		}
		perPage = p
	}
	return page, perPage, true
}

func pageBounds(page, perPage, total int) (int, int) {
	from := (page - 1) * perPage
	if from > total {
		from = total
	}
	to := from + perPage
	if to > total {
		to = total
	}
	return from, to
}

func lastPage(total, perPage int) int {
	if total == 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// linkBase returns the absolute request URL with the page parameter moved to the end,
// so clients cannot assume it comes first.
func linkBase(r *http.Request) *url.URL {
	u := &url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
	q := r.URL.Query()
	q.Del("page")
	u.RawQuery = q.Encode()
	return u
}

func userJSON(login string, id int) string {
	body := `{}`
	body, _ = sjson.Set(body, "login", login)
	body, _ = sjson.Set(body, "id", id)
	body, _ = sjson.Set(body, "type", "User")
	return body
}

// issueJSON renders issue n. Even issues have a body, odd ones a null body; issues that
// are multiples of three are closed.
func issueJSON(n int) string {
	body := `{}`
	body, _ = sjson.Set(body, "id", 1000+n)
	body, _ = sjson.Set(body, "number", n)
	body, _ = sjson.Set(body, "title", fmt.Sprintf("Issue %d", n))
	if n%3 == 0 {
		body, _ = sjson.Set(body, "state", "closed")
		body, _ = sjson.Set(body, "closed_at", "2011-04-22T13:33:48Z")
	} else {
		body, _ = sjson.Set(body, "state", "open")
		body, _ = sjson.SetRaw(body, "closed_at", "null")
	}
	if n%2 == 0 {
		body, _ = sjson.Set(body, "body", fmt.Sprintf("Body of issue %d", n))
	} else {
		body, _ = sjson.SetRaw(body, "body", "null")
	}
	body, _ = sjson.SetRaw(body, "user", userJSON("octocat", 1))
	return body
}
