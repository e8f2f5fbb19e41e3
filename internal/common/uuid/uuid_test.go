package uuid

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	id := New()
	assert.NotEqual(t, Nil, id)
	assert.True(t, IsUUIDv7(id))

	id2, err := NewRandom()
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)
}

func TestParse(t *testing.T) {
	valid := "123e4567-e89b-12d3-a456-426614174000"
	id, err := Parse(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, id.String())
	assert.False(t, IsUUIDv7(id))

	_, err = Parse("not-a-uuid")
	assert.Error(t, err)
}

func TestTime(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := New()
	ts := Time(id)
	assert.True(t, ts.After(before))
	assert.True(t, ts.Before(time.Now().Add(time.Second)))
	assert.False(t, IsUUIDv7(uuid.New()))
}
