package logger

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"trace":   LevelTrace,
		"DEBUG":   LevelDebug,
		"":        LevelInfo,
		" info ":  LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

// TestThresholdFiltersOutput mutates package globals, so it does not run in
// parallel.
func TestThresholdFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetFlags(0)
	prev := CurrentLevel()
	t.Cleanup(func() {
		SetLevel(prev)
		SetOutput(os.Stderr)
		SetFlags(log.LstdFlags)
	})

	SetLevel(LevelWarn)
	Debugf("hidden %d", 1)
	Warnf("shown %d", 2)

	out := buf.String()
	require.False(t, strings.Contains(out, "hidden"))
	require.Contains(t, out, "[WARN] shown 2")
	require.True(t, Enabled(LevelError))
	require.False(t, Enabled(LevelInfo))
}
