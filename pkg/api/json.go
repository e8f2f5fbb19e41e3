package api

import (
	"bytes"
	"io"
	"net/url"
	"reflect"
	"strings"

	jsonitor "github.com/json-iterator/go"
	"github.com/tansive/ghrest/internal/common/httpclient"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

// wireShaper is implemented by models whose wire representation differs from their
// natural JSON encoding. WireShape receives the natural encoding and returns the one to send.
type wireShaper interface {
	WireShape(data []byte) ([]byte, error)
}

// JSONPipeline serialises request bodies and deserialises response bodies as JSON.
type JSONPipeline struct {
	mediaType string
}

// NewJSONPipeline returns a pipeline that sends mediaType as the default Accept header.
func NewJSONPipeline(mediaType string) *JSONPipeline {
	if mediaType == "" {
		mediaType = DefaultMediaType
	}
	return &JSONPipeline{mediaType: mediaType}
}

// SerializeRequest returns a copy of req with an Accept header and, for object bodies, a
// JSON string body. Raw bodies (strings, bytes, readers, form values) pass through. A
// caller supplied Accept header is never replaced.
func (p *JSONPipeline) SerializeRequest(req *httpclient.Request) (*httpclient.Request, error) {
	if req == nil {
		return nil, httpclient.ErrInvalidRequest.New("nil request")
	}
	out := req.Clone()
	if out.Headers.Get("Accept") == "" {
		out.Headers.Set("Accept", p.mediaType)
	}
	switch out.Body.(type) {
	case nil, string, []byte, url.Values, io.Reader:
		return out, nil
	}
	data, err := json.Marshal(out.Body)
	if err != nil {
		return nil, httpclient.ErrInvalidRequest.MsgErr("unable to serialise request body", err)
	}
	if ws, ok := out.Body.(wireShaper); ok {
		if data, err = ws.WireShape(data); err != nil {
			return nil, httpclient.ErrInvalidRequest.MsgErr("unable to serialise request body", err)
		}
	}
	out.Body = string(data)
	return out, nil
}

// IsJSONMediaType reports whether contentType is application/json or application/*+json.
func IsJSONMediaType(contentType string) bool {
	mt := httpclient.MediaType(contentType)
	if mt == "application/json" {
		return true
	}
	return strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json")
}

// DeserializeResponse decodes a JSON response body into T. The boolean is false when the
// body was not decoded: a non-JSON content type, an empty body or an empty object. When T
// is a slice and the body is a single object, the object becomes a one element slice.
func DeserializeResponse[T any](rsp *httpclient.Response) (T, bool, error) {
	var v T
	if rsp == nil || !IsJSONMediaType(rsp.ContentType) {
		return v, false, nil
	}
	body := bytes.TrimSpace(rsp.BodyBytes())
	if len(body) == 0 || bytes.Equal(body, []byte("{}")) {
		return v, false, nil
	}
	if body[0] == '{' && reflect.TypeOf((*T)(nil)).Elem().Kind() == reflect.Slice {
		wrapped := make([]byte, 0, len(body)+2)
		wrapped = append(wrapped, '[')
		wrapped = append(wrapped, body...)
		body = append(wrapped, ']')
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, false, ErrParse.MsgErr("unable to decode "+httpclient.MediaType(rsp.ContentType)+" body", err)
	}
	return v, true, nil
}
