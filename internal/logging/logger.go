package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/bnema/miniapp-telemetry/internal/config"
	"github.com/rs/zerolog"
)

// New builds the process logger. Console output goes to w with short
// timestamps; json output writes one event per line.
func New(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var out io.Writer = w
	switch cfg.Format {
	case "", "console":
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05",
			NoColor:    true,
		}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

func parseLevel(raw string) (zerolog.Level, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return zerolog.InfoLevel, nil
	}

	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level: %w", err)
	}
	if level == zerolog.NoLevel {
		return zerolog.NoLevel, fmt.Errorf("parse log level: unknown level %q", raw)
	}

	return level, nil
}
