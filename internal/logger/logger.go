package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup sets the process-wide zerolog level and returns the root logger
// the server and workers derive their component loggers from. An
// unknown level falls back to info rather than failing startup. Format
// "pretty" selects the human console writer for local runs; anything
// else emits one JSON object per line for log shipping.
func Setup(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stdout
	if format == "pretty" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}

	return zerolog.New(out).With().Timestamp().Caller().Logger()
}
