// Package logging installs the process-wide slog handler used by the executables.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs a colored text handler in development and a JSON handler
// everywhere else, and returns the logger.
func Setup(environment string, debug bool) *slog.Logger {
	return setup(os.Stderr, environment, debug)
}

func setup(w io.Writer, environment string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if environment == "development" {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
