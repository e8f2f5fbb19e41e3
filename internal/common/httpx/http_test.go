package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestPageLinks(t *testing.T) {
	u, err := url.Parse("https://api.github.com/repos/o/r/issues?state=all&page=2&per_page=5")
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	PageLinks(rr, u, 2, 4)
	link := rr.Header().Get("Link")
	assert.Contains(t, link, `<https://api.github.com/repos/o/r/issues?state=all&page=3&per_page=5>; rel="next"`)
	assert.Contains(t, link, `<https://api.github.com/repos/o/r/issues?state=all&page=1&per_page=5>; rel="first"`)
	assert.Contains(t, link, `<https://api.github.com/repos/o/r/issues?state=all&page=1&per_page=5>; rel="prev"`)
	assert.Contains(t, link, `<https://api.github.com/repos/o/r/issues?state=all&page=4&per_page=5>; rel="last"`)

	rr = httptest.NewRecorder()
	PageLinks(rr, u, 4, 4)
	assert.NotContains(t, rr.Header().Get("Link"), `rel="next"`)

	rr = httptest.NewRecorder()
	u, _ = url.Parse("https://api.github.com/user/repos")
	PageLinks(rr, u, 1, 2)
	assert.Contains(t, rr.Header().Get("Link"), `<https://api.github.com/user/repos?page=2>; rel="next"`)
}

func TestErrorDocuments(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrValidationFailed(FieldError{Resource: "Issue", Field: "title", Code: "missing_field"}).Send(rr)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, MediaTypeJSON, rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Equal(t, "Validation Failed", gjson.Get(body, "message").String())
	assert.Equal(t, "title", gjson.Get(body, "errors.0.field").String())

	rr = httptest.NewRecorder()
	SendJSON(context.Background(), rr, http.StatusOK, map[string]int{"id": 1})
	assert.JSONEq(t, `{"id":1}`, rr.Body.String())

	rr = httptest.NewRecorder()
	SendJSON(context.Background(), rr, http.StatusOK, "not json")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	rr = httptest.NewRecorder()
	reset := time.Unix(1700000000, 0)
	RateLimit(rr, 60, 59, reset)
	assert.Equal(t, "1700000000", rr.Header().Get("X-RateLimit-Reset"))
}
