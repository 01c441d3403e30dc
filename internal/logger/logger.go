package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New constructs a zerolog logger writing to w based on level and format configuration.
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var out io.Writer
	switch strings.ToLower(format) {
	case "json":
		out = w
	case "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Logger{}, fmt.Errorf("unsupported log format %q", format)
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// Init builds a stdout logger and installs it as the global and default context logger.
func Init(level, format string) (zerolog.Logger, error) {
	l, err := New(os.Stdout, level, format)
	if err != nil {
		return zerolog.Logger{}, err
	}
	zerolog.SetGlobalLevel(l.GetLevel())
	log.Logger = l
	zerolog.DefaultContextLogger = &log.Logger
	return l, nil
}
