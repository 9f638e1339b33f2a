package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/config"
)

// serviceName is stamped on every log line.
const serviceName = "sensorgate"

// Logger is the gateway's structured logger. It embeds *slog.Logger, so
// the usual Info/Warn/Error methods are available directly; every line
// carries the service name and build version.
//
// Safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a Logger from the logging section of config.yaml: JSON or
// text formatting, stdout or stderr, and a minimum level.
func New(cfg config.LoggingConfig, version string) *Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// parseLevel maps a config string onto a slog level. Unrecognised or
// empty values fall back to info rather than failing startup.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// With returns a child Logger carrying extra default attributes, e.g.
// logger.With("component", "relay").
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default is the bootstrap logger used before the config file has been
// read: JSON to stdout at info level.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev")
}
