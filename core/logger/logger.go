package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	log  *slog.Logger
	once sync.Once
)

// Init configures the process logger. level accepts debug/info/warn/error,
// format accepts json/text. Safe to call more than once; only the first call
// takes effect.
func Init(level string, format string) {
	once.Do(func() {
		var lv slog.Level
		switch strings.ToLower(level) {
		case "debug":
			lv = slog.LevelDebug
		case "warn":
			lv = slog.LevelWarn
		case "error":
			lv = slog.LevelError
		default:
			lv = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: lv}
		var handler slog.Handler
		if strings.ToLower(format) == "json" {
			handler = slog.NewJSONHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(os.Stdout, opts)
		}
		log = slog.New(handler)
	})
}

func get() *slog.Logger {
	if log == nil {
		Init("info", "text")
	}
	return log
}

func Debug(msg string, args ...any) {
	get().Debug(msg, normalize(args)...)
}

func Info(msg string, args ...any) {
	get().Info(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	get().Warn(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	get().Error(msg, normalize(args)...)
}

// normalize tolerates call sites that pass a bare error (or any odd trailing
// value) instead of key/value pairs.
func normalize(args []any) []any {
	if len(args) == 1 {
		if err, ok := args[0].(error); ok {
			return []any{"error", err}
		}
	}
	if len(args)%2 != 0 {
		return append(args[:len(args)-1], "detail", args[len(args)-1])
	}
	return args
}
