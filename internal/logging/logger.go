package logging

import (
	"log/slog"
	"os"
)

type Config struct {
	Level  slog.Level
	AppEnv string
}

// Init - installs the process-wide logger. Text locally, JSON elsewhere.
func Init(cfg Config) {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.AppEnv == "local" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
