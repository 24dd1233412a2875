package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	log := New("debug")
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())

	log = New("")
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	FromContext(ctx).Info().Str("document", "visa-2024-03-01.pdf").Msg("imported")

	assert.Contains(t, buf.String(), "imported")
	assert.Contains(t, buf.String(), "visa-2024-03-01.pdf")
}

func TestFromContext_NoLogger(t *testing.T) {
	// Must not panic without a logger in the context.
	FromContext(context.Background()).Info().Msg("dropped")
}
