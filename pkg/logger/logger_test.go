package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"chatty":  zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestGetBeforeInitIsSilent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	log := Get()
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestInitOnce(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Level: "debug", Output: &first, Component: "server"})
	Init(Options{Level: "error", Output: &second})

	log := Get()
	log.Debug().Str("appointment", "a-1").Msg("booked")

	assert.Zero(t, second.Len())
	var entry map[string]any
	require.NoError(t, json.Unmarshal(first.Bytes(), &entry))
	assert.Equal(t, "booked", entry["message"])
	assert.Equal(t, "server", entry["component"])
	assert.Equal(t, "a-1", entry["appointment"])
}

func TestLevelFilters(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	log := Init(Options{Level: "warn", Output: &buf})
	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())
	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
