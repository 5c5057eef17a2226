package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerDiscards(t *testing.T) {
	require.Equal(t, zerolog.Disabled, Logger.GetLevel())
}

func TestSetGlobalLogger(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { SetGlobalLogger(prev) })

	var buf bytes.Buffer
	SetGlobalLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	Debug().Str("type", "User").Msg("built object type")
	Trace().Msg("dropped")

	require.Contains(t, buf.String(), `"type":"User"`)
	require.Contains(t, buf.String(), `"message":"built object type"`)
	require.NotContains(t, buf.String(), "dropped")
}
