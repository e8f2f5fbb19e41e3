package api

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tansive/ghrest/internal/common/httpclient"
)

func TestToParameters(t *testing.T) {
	params, err := ToParameters(IssueRequest{
		State:  "open",
		Labels: []string{"bug", "ui"},
		Sort:   "created",
		Since:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"state":  "open",
		"labels": "bug,ui",
		"sort":   "created",
		"since":  "2024-01-02T03:04:05Z",
	}, params)

	params, err = ToParameters(&IssueRequest{})
	require.NoError(t, err)
	assert.Empty(t, params)
}

func TestToParametersScalars(t *testing.T) {
	type options struct {
		PerPage  int      `mapstructure:"per_page"`
		Archived bool     `mapstructure:"archived"`
		Score    float64  `mapstructure:"score"`
		Owner    *string  `mapstructure:"owner"`
		IDs      []int64  `mapstructure:"ids"`
		Empty    []string `mapstructure:"empty"`
	}
	owner := "octocat"
	params, err := ToParameters(options{PerPage: 30, Archived: true, Score: 1.5, Owner: &owner, IDs: []int64{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"per_page": "30",
		"archived": "true",
		"score":    "1.5",
		"owner":    "octocat",
		"ids":      "1,2",
	}, params)
}

func TestToParametersMaps(t *testing.T) {
	params, err := ToParameters(map[string]string{"a": "1", "b": ""})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, params)

	params, err = ToParameters(map[string]any{"n": 3, "s": []string{"x", "y"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"n": "3", "s": "x,y"}, params)

	params, err = ToParameters(nil)
	require.NoError(t, err)
	assert.Empty(t, params)
}

func TestToParametersRejectsNested(t *testing.T) {
	type nested struct {
		Inner struct {
			A string `mapstructure:"a"`
		} `mapstructure:"inner"`
	}
	v := nested{}
	v.Inner.A = "x"
	_, err := ToParameters(v)
	assert.True(t, errors.Is(err, httpclient.ErrInvalidRequest))

	_, err = ToParameters(map[string]any{"m": map[string]string{"a": "b"}})
	assert.True(t, errors.Is(err, httpclient.ErrInvalidRequest))
}
