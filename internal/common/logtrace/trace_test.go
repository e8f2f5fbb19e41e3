package logtrace

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf)
	t.Cleanup(InitLogger)

	assert.Empty(t, RequestIDFromContext(context.Background()))

	ctx, id := WithRequestID(context.Background())
	require.NotEmpty(t, id)
	assert.Equal(t, id, RequestIDFromContext(ctx))

	again, id2 := WithRequestID(ctx)
	assert.Equal(t, id, id2)
	assert.Equal(t, ctx, again)

	log.Ctx(ctx).Info().Msg("round trip")
	assert.Contains(t, buf.String(), id)
}

func TestSetDebug(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf)
	t.Cleanup(InitLogger)

	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	SetDebug(true)
	log.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
	SetDebug(false)
}
