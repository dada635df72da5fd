package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   Level
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	assert.Equal(t, LevelDebug, DefaultConfig().Level)

	t.Setenv(EnvLevel, "")
	assert.Equal(t, LevelWarn, DefaultConfig().Level)
}

func TestSetupFiltersByLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	Setup(Config{Level: LevelWarn, Output: &buf})

	logger := NewLogger("batch")
	logger.Info().Msg("hidden")
	logger.Warn().Str("batch_id", "b1").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, `"component":"batch"`)
	assert.Contains(t, out, `"batch_id":"b1"`)
}

func TestSetupPretty(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	Setup(Config{Level: LevelInfo, Pretty: true, NoColor: true, Output: &buf})
	logger := NewLogger("cli")
	logger.Info().Msg("ready")

	assert.Contains(t, buf.String(), "ready")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestWarnFunc(t *testing.T) {
	var buf bytes.Buffer
	warn := WarnFunc(zerolog.New(&buf))
	warn("unresolved token :%s", "id")
	assert.Contains(t, buf.String(), "unresolved token :id")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
