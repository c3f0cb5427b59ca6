package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
	"go.uber.org/fx"
)

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// newLogHandler builds the console handler for format and, when file is
// non-nil, fans records out to a JSON handler writing to it as well.
func newLogHandler(format string, level slog.Level, console io.Writer, file io.Writer) slog.Handler {
	var handler slog.Handler
	switch format {
	case "text", "tint":
		handler = tint.NewHandler(console, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		})
	default:
		handler = slog.NewJSONHandler(console, &slog.HandlerOptions{Level: level})
	}

	if file == nil {
		return handler
	}
	return slogmulti.Fanout(
		handler,
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}),
	)
}

func ProvideLogger(lc fx.Lifecycle, cfg *Config) (*slog.Logger, error) {
	level := parseLogLevel(cfg.LogLevel)

	var file io.Writer
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return f.Close()
			},
		})
	}

	logger := slog.New(newLogHandler(cfg.LogFormat, level, os.Stdout, file))
	slog.SetDefault(logger)
	return logger, nil
}
