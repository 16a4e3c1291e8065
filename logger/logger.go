// Package logger provides the configured zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a logger for the service. Development gets a human readable
// console writer, every other environment writes JSON lines.
func New(serviceName, level string, pretty bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(lvl).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}

// Init builds the logger and installs it as the global one.
func Init(serviceName, level string, pretty bool) zerolog.Logger {
	l := New(serviceName, level, pretty)
	log.Logger = l
	zerolog.SetGlobalLevel(l.GetLevel())
	return l
}
