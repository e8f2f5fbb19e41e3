// Package apitest runs an in-process fake of the parts of the GitHub REST API the client
// is tested against: paged issue listings, wrapped search results, git objects, redirect
// chains and every error document the client classifies.
package apitest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	commonmiddleware "github.com/tansive/ghrest/internal/common/middleware"
)

// Defaults of the fake.
const (
	DefaultIssueCount = 12
	DefaultPerPage    = 5
	RateLimitLimit    = 5000
	GoodToken         = "good-token"
	OTPToken          = "otp-token"
	OTPCode           = "123456"
)

// Server is a fake GitHub API listening on a loopback address.
type Server struct {
	Router *chi.Mux
	URL    string

	httpServer *httptest.Server
	issueCount int

	mu        sync.Mutex
	requests  []*http.Request
	bodies    []string
	remaining int
}

// Option configures a Server.
type Option func(*Server)

// WithIssueCount sets the number of issues in the fake repository.
func WithIssueCount(n int) Option {
	return func(s *Server) {
		s.issueCount = n
	}
}

// NewServer starts a fake API. Call Close when done.
func NewServer(opts ...Option) *Server {
	s := &Server{
		Router:     chi.NewRouter(),
		issueCount: DefaultIssueCount,
		remaining:  RateLimitLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.MountHandlers()
	s.httpServer = httptest.NewServer(s.Router)
	s.URL = s.httpServer.URL + "/"
	return s
}

// MountHandlers installs middleware and routes.
func (s *Server) MountHandlers() {
	s.Router.Use(commonmiddleware.RequestLogger)
	s.Router.Use(commonmiddleware.PanicHandler)
	s.Router.Use(s.record)
	s.mountResourceHandlers(s.Router)
}

func (s *Server) mountResourceHandlers(r chi.Router) {
	r.Get("/user", s.getUser)
	r.Get("/rate_limit", s.getRateLimit)
	r.Get("/repos/{owner}/{repo}/issues", s.listIssues)
	r.Get("/repos/{owner}/{repo}/git/commits/{sha}", s.getCommit)
	r.Post("/repos/{owner}/{repo}/git/tags", s.createTag)
	r.Get("/repos/{owner}/{repo}/readme", s.getReadme)
	r.Get("/search/issues", s.searchIssues)
	r.Get("/redirect/{n}", s.redirect)
	r.Get("/loop", s.loop)
	r.Get("/errors/{kind}", s.sendError)
	r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("handler failure") })
}

// Close shuts the server down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// Client returns an http.Client that talks to the server.
func (s *Server) Client() *http.Client {
	return s.httpServer.Client()
}

// RequestCount returns the number of requests served so far.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Requests returns copies of the requests served so far, oldest first.
func (s *Server) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

// LastRequest returns the most recent request, or nil.
func (s *Server) LastRequest() *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

// LastBody returns the body of the most recent request.
func (s *Server) LastBody() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bodies) == 0 {
		return ""
	}
	return s.bodies[len(s.bodies)-1]
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(r.Context()))
		s.bodies = append(s.bodies, string(body))
		if s.remaining > 0 {
			s.remaining--
		}
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}
