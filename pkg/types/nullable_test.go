package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type issueBody struct {
	Body     NullableString `json:"body"`
	ClosedAt NullableTime   `json:"closed_at"`
}

func TestNullableDecode(t *testing.T) {
	var v issueBody
	require.NoError(t, json.Unmarshal([]byte(`{"body":null,"closed_at":null}`), &v))
	assert.True(t, v.Body.IsNil())
	assert.True(t, v.ClosedAt.IsNil())

	require.NoError(t, json.Unmarshal([]byte(`{"body":"","closed_at":"2011-04-22T13:33:48Z"}`), &v))
	assert.False(t, v.Body.IsNil())
	assert.Equal(t, "", v.Body.String())
	assert.Equal(t, time.Date(2011, 4, 22, 13, 33, 48, 0, time.UTC), v.ClosedAt.Value.UTC())

	assert.Error(t, json.Unmarshal([]byte(`{"closed_at":"yesterday"}`), &v))
}

func TestNullableEncode(t *testing.T) {
	out, err := json.Marshal(issueBody{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"body":null,"closed_at":null}`, string(out))

	var ns NullableString
	ns.Set("text")
	out, err = json.Marshal(issueBody{Body: ns, ClosedAt: NullableTimeFrom(time.Unix(0, 0))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"body":"text","closed_at":"1970-01-01T00:00:00Z"}`, string(out))
	assert.Equal(t, NullableString{}, NullString())
	assert.Equal(t, "x", NullableStringFrom("x").String())
}
