package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLevel names the environment variable that overrides the log level.
const EnvLevel = "HITPULL_LOG_LEVEL"

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	// LevelDisabled silences all output.
	LevelDisabled Level = "disabled"
)

type Config struct {
	Level   Level
	Pretty  bool
	NoColor bool
	Output  io.Writer
}

func DefaultConfig() Config {
	level := LevelWarn
	if v := os.Getenv(EnvLevel); v != "" {
		level = Level(v)
	}
	return Config{
		Level:  level,
		Output: os.Stderr,
	}
}

// Setup configures and installs the global logger.
func Setup(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor, TimeFormat: "15:04:05"}
	}

	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// ParseLevel maps a level name to a zerolog level. Unknown names map to info.
func ParseLevel(level Level) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug", "trace":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger returns the global logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// WarnFunc adapts a logger to the printf-style warning hooks used by the
// injector and resolver.
func WarnFunc(logger zerolog.Logger) func(format string, args ...any) {
	return func(format string, args ...any) {
		logger.Warn().Msg(fmt.Sprintf(format, args...))
	}
}
