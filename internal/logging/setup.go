package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the handler and destination of the process logger.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	File   string // rotated log file; empty means stderr
}

// New builds a Logger from opts. The returned io.Closer releases the log
// file, if any.
func New(opts Options) (*SlogLogger, io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		w, closer = fileWriter, fileWriter
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(opts.Level))); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	var h slog.Handler
	switch opts.Format {
	case "json":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text", "":
		h = charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			Prefix:          "nevroth",
			ReportTimestamp: true,
		})
	default:
		return nil, nil, fmt.Errorf("invalid log format %q", opts.Format)
	}

	return NewSlogLogger(slog.New(h)), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
