package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tansive/ghrest/internal/common/httpclient"
	"github.com/tidwall/gjson"
)

func newTestRequest(t *testing.T, body any) *httpclient.Request {
	t.Helper()
	base, err := url.Parse(DefaultBaseAddress)
	require.NoError(t, err)
	req, err := httpclient.NewRequest(http.MethodPost, base, "repos/o/r/git/commits")
	require.NoError(t, err)
	req.Body = body
	return req
}

func TestSerializeRequestAccept(t *testing.T) {
	p := NewJSONPipeline("")

	req := newTestRequest(t, nil)
	out, err := p.SerializeRequest(req)
	require.NoError(t, err)
	assert.Equal(t, DefaultMediaType, out.Headers.Get("Accept"))
	assert.Empty(t, req.Headers.Get("Accept"), "input request must not change")

	req.Headers.Set("Accept", "application/vnd.github.raw")
	out, err = p.SerializeRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.github.raw", out.Headers.Get("Accept"))
}

func TestSerializeRequestBodies(t *testing.T) {
	p := NewJSONPipeline(DefaultMediaType)
	reader := strings.NewReader("stream")
	form := url.Values{"a": {"b"}}
	for _, body := range []any{"raw", []byte("bytes"), reader, form} {
		out, err := p.SerializeRequest(newTestRequest(t, body))
		require.NoError(t, err)
		assert.Equal(t, body, out.Body)
	}

	commit := Commit{Message: "msg", Tree: GitReference{Sha: "abc"}}
	req := newTestRequest(t, commit)
	out, err := p.SerializeRequest(req)
	require.NoError(t, err)
	s, ok := out.Body.(string)
	require.True(t, ok)
	assert.Equal(t, "msg", gjson.Get(s, "message").String())
	assert.Equal(t, "abc", gjson.Get(s, "tree.sha").String())
	assert.Equal(t, commit, req.Body)

	_, err = p.SerializeRequest(newTestRequest(t, map[string]any{"bad": make(chan int)}))
	assert.True(t, errors.Is(err, httpclient.ErrInvalidRequest))
}

func TestCommitRoundTrip(t *testing.T) {
	authored := time.Date(2008, 7, 9, 16, 13, 30, 0, time.UTC)
	committed := time.Date(2008, 7, 10, 9, 2, 11, 0, time.UTC)
	commit := Commit{
		Sha:       "7638417db6d59f3c431d3e1f261cc637155684cd",
		URL:       "https://api.github.com/repos/octocat/hello-world/git/commits/7638417db6d59f3c431d3e1f261cc637155684cd",
		Message:   "added readme, because im a good github citizen",
		Author:    Signature{Name: "Monalisa Octocat", Email: "mona@example.com", Date: authored},
		Committer: Signature{Name: "Hubot", Email: "hubot@example.com", Date: committed},
		Tree:      GitReference{Sha: "691272480426f78a0138979dd3ce63b77f706feb"},
		Parents:   []GitReference{{Sha: "1acc419d4d6a9ce985db7be48c6349a0475975b5"}},
	}

	out, err := NewJSONPipeline(DefaultMediaType).SerializeRequest(newTestRequest(t, commit))
	require.NoError(t, err)

	rsp := &httpclient.Response{
		StatusCode:  http.StatusOK,
		Headers:     http.Header{},
		Body:        out.Body,
		ContentType: "application/json",
	}
	decoded, parsed, err := DeserializeResponse[Commit](rsp)
	require.NoError(t, err)
	require.True(t, parsed)
	assert.Equal(t, commit.Sha, decoded.Sha)
	assert.Equal(t, commit.Message, decoded.Message)
	assert.True(t, authored.Equal(decoded.Author.Date))
	assert.True(t, committed.Equal(decoded.Committer.Date))
	assert.Equal(t, commit, decoded)
}

func TestSerializeNewTagWireShape(t *testing.T) {
	p := NewJSONPipeline("")
	for _, body := range []any{
		NewTag{Tag: "v1.0", Message: "release", Object: TagObject{Sha: "c3d0be41", Type: "commit"}},
		&NewTag{Tag: "v1.0", Message: "release", Object: TagObject{Sha: "c3d0be41", Type: "commit"}},
	} {
		out, err := p.SerializeRequest(newTestRequest(t, body))
		require.NoError(t, err)
		s := out.Body.(string)
		assert.Equal(t, "c3d0be41", gjson.Get(s, "object").String())
		assert.Equal(t, gjson.String, gjson.Get(s, "object").Type)
		assert.Equal(t, "commit", gjson.Get(s, "type").String())
		assert.Equal(t, "v1.0", gjson.Get(s, "tag").String())
		assert.False(t, gjson.Get(s, "tagger").Exists())
	}
}

func TestDeserializeResponse(t *testing.T) {
	body := `{"sha":"7638417db6d59f3c431d3e1f261cc637155684cd","message":"added readme","author":{"name":"Monalisa Octocat","email":"mona@example.com","date":"2008-07-09T16:13:30Z"},"tree":{"sha":"691272480426f78a0138979dd3ce63b77f706feb"},"parents":[{"sha":"1acc419d4d6a9ce985db7be48c6349a0475975b5"}]}`
	commit, parsed, err := DeserializeResponse[Commit](jsonResponse(200, body, nil))
	require.NoError(t, err)
	require.True(t, parsed)
	assert.Equal(t, "added readme", commit.Message)
	assert.Equal(t, "Monalisa Octocat", commit.Author.Name)
	assert.Equal(t, time.Date(2008, 7, 9, 16, 13, 30, 0, time.UTC), commit.Author.Date.UTC())
	require.Len(t, commit.Parents, 1)
	assert.Equal(t, "1acc419d4d6a9ce985db7be48c6349a0475975b5", commit.Parents[0].Sha)
}

func TestDeserializeResponseMediaTypes(t *testing.T) {
	rsp := jsonResponse(200, `{"login":"octocat"}`, nil)

	rsp.ContentType = "application/vnd.github.v3+json; charset=utf-8"
	u, parsed, err := DeserializeResponse[User](rsp)
	require.NoError(t, err)
	assert.True(t, parsed)
	assert.Equal(t, "octocat", u.Login)

	rsp.ContentType = "text/html"
	_, parsed, err = DeserializeResponse[User](rsp)
	require.NoError(t, err)
	assert.False(t, parsed)

	rsp.ContentType = ""
	_, parsed, err = DeserializeResponse[User](rsp)
	require.NoError(t, err)
	assert.False(t, parsed)
}

func TestDeserializeResponseUnset(t *testing.T) {
	for _, body := range []string{"", "  ", "{}"} {
		u, parsed, err := DeserializeResponse[*User](jsonResponse(200, body, nil))
		require.NoError(t, err)
		assert.False(t, parsed)
		assert.Nil(t, u)
	}
}

func TestDeserializeResponseWrapsObjectForSlice(t *testing.T) {
	users, parsed, err := DeserializeResponse[[]User](jsonResponse(200, `{"login":"octocat"}`, nil))
	require.NoError(t, err)
	require.True(t, parsed)
	require.Len(t, users, 1)
	assert.Equal(t, "octocat", users[0].Login)

	users, _, err = DeserializeResponse[[]User](jsonResponse(200, `[{"login":"a"},{"login":"b"}]`, nil))
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestDeserializeResponseParseError(t *testing.T) {
	_, parsed, err := DeserializeResponse[Commit](jsonResponse(200, `{"sha": 42`, nil))
	assert.False(t, parsed)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestIsJSONMediaType(t *testing.T) {
	assert.True(t, IsJSONMediaType("application/json"))
	assert.True(t, IsJSONMediaType("Application/JSON; charset=utf-8"))
	assert.True(t, IsJSONMediaType("application/vnd.github.v3+json"))
	assert.False(t, IsJSONMediaType("application/vnd.github.raw"))
	assert.False(t, IsJSONMediaType("text/json+plain"))
	assert.False(t, IsJSONMediaType(""))
}
