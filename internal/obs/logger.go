// Package obs builds the process-wide slog logger.
package obs

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger returns a colour text logger for the "dev" and "local"
// environments and a JSON logger for everything else. An unknown level
// falls back to info.
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	switch env {
	case "dev", "local":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
		}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: lvl,
		}))
	}
}
