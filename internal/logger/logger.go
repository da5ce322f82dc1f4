// Package logger configures the process-wide zerolog root that every
// component logger derives from.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the root logger. Format "pretty" writes colorized console
// lines for local development; anything else emits one JSON object per line
// for log shippers. An unrecognized level falls back to info rather than
// failing startup.
func Setup(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if format == "pretty" {
		log = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.Kitchen,
		})
	}
	return log
}
