package api

import (
	"time"

	"github.com/tansive/ghrest/pkg/types"
	"github.com/tidwall/sjson"
)

// User is the summary of an account embedded in other resources.
type User struct {
	Login   string `json:"login"`
	ID      int64  `json:"id"`
	Type    string `json:"type,omitempty"`
	HTMLURL string `json:"html_url,omitempty"`
}

// Signature identifies the author, committer or tagger of a git object.
type Signature struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

// GitReference points at a git object by SHA.
type GitReference struct {
	Sha string `json:"sha"`
	URL string `json:"url,omitempty"`
}

// Commit is a git commit from the git database API.
type Commit struct {
	Sha       string         `json:"sha"`
	URL       string         `json:"url,omitempty"`
	Message   string         `json:"message"`
	Author    Signature      `json:"author"`
	Committer Signature      `json:"committer"`
	Tree      GitReference   `json:"tree"`
	Parents   []GitReference `json:"parents"`
}

// Label is an issue label.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Issue is an issue or pull request in the issues API.
type Issue struct {
	ID       int64                `json:"id"`
	Number   int                  `json:"number"`
	Title    string               `json:"title"`
	State    string               `json:"state"`
	Body     types.NullableString `json:"body"`
	User     *User                `json:"user,omitempty"`
	Labels   []Label              `json:"labels,omitempty"`
	HTMLURL  string               `json:"html_url,omitempty"`
	ClosedAt types.NullableTime   `json:"closed_at"`
}

// IssueRequest filters issue listings. Since is an RFC 3339 timestamp.
type IssueRequest struct {
	Filter    string   `mapstructure:"filter,omitempty"`
	State     string   `mapstructure:"state,omitempty"`
	Labels    []string `mapstructure:"labels,omitempty"`
	Sort      string   `mapstructure:"sort,omitempty"`
	Direction string   `mapstructure:"direction,omitempty"`
	Since     string   `mapstructure:"since,omitempty"`
}

// TagObject is the object an annotated tag points at.
type TagObject struct {
	Sha  string `json:"sha"`
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// NewTag creates an annotated tag. On the wire the object is flattened into "object"
// (the SHA) and "type".
type NewTag struct {
	Tag     string     `json:"tag"`
	Message string     `json:"message"`
	Object  TagObject  `json:"object"`
	Tagger  *Signature `json:"tagger,omitempty"`
}

// WireShape flattens the nested object into the fields the tags API expects.
func (t NewTag) WireShape(data []byte) ([]byte, error) {
	data, err := sjson.SetBytes(data, "type", t.Object.Type)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(data, "object", t.Object.Sha)
}

// GitTag is an annotated tag as returned by the API.
type GitTag struct {
	Sha     string     `json:"sha"`
	Tag     string     `json:"tag"`
	Message string     `json:"message"`
	Object  TagObject  `json:"object"`
	Tagger  *Signature `json:"tagger,omitempty"`
	URL     string     `json:"url,omitempty"`
}

// RateLimitResource is one entry of the rate limit status.
type RateLimitResource struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
	Used      int   `json:"used"`
}

// RateLimitResponse is the body of GET /rate_limit.
type RateLimitResponse struct {
	Resources map[string]RateLimitResource `json:"resources"`
	Rate      RateLimitResource            `json:"rate"`
}
