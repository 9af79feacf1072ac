package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"skyeserver/internal/config"
)

// New builds the process logger. When cfg.File is set records are appended
// to that file and the returned closer must be closed on exit; otherwise
// records go to fallback.
func New(cfg config.LoggingConfig, fallback io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := fallback
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		out = f
		closer = f
	}

	if cfg.Pretty && cfg.File == "" {
		out = zerolog.ConsoleWriter{Out: out}
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Logger(), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
