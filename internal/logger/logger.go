package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs a JSON slog handler as the process default. Level comes from
// LOG_LEVEL (debug, info, warn, error), defaulting to info.
func Setup() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return log
}
