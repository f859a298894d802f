package telemetry

import (
	"context"
	"log/slog"
	"os"
	"sort"
)

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(slog.LevelInfo, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(slog.LevelWarn, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(slog.LevelError, msg, fields)
}

// Logger returns a JSON slog.Logger writing to the current stdout.
func Logger() *slog.Logger {
	return slog.New(newHandler())
}

func write(level slog.Level, msg string, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	// Resolve stdout on every write so tests can swap os.Stdout.
	Logger().LogAttrs(context.Background(), level, msg, attrs...)
}

func newHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceAttr,
	})
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.String("ts", a.Value.Time().UTC().Format("2006-01-02T15:04:05Z07:00"))
	case slog.LevelKey:
		level, ok := a.Value.Any().(slog.Level)
		if !ok {
			return a
		}
		switch {
		case level >= slog.LevelError:
			return slog.String(slog.LevelKey, "error")
		case level >= slog.LevelWarn:
			return slog.String(slog.LevelKey, "warn")
		case level >= slog.LevelInfo:
			return slog.String(slog.LevelKey, "info")
		default:
			return slog.String(slog.LevelKey, "debug")
		}
	case "error":
		if err, ok := a.Value.Any().(error); ok {
			return slog.String("error", err.Error())
		}
	}
	return a
}
