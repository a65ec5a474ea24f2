package logging

import (
	"log/slog"
	"os"

	"github.com/mosaicfw/mosaic/config"
)

// New builds the process logger from the logging section of the snapshot.
// Everything the kernel reports (module lifecycle, migrations, shutdown
// failures) goes through this logger; nothing writes to stdout directly.
func New(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level(cfg.Level)}

	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}

func level(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
