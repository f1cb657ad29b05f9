package observability

import (
    "log/slog"
    "os"
    "strings"
)

// NewLogger builds the application logger. format is "json" or "text";
// level is one of debug, info, warn, error (defaults to info).
func NewLogger(format, level string) *slog.Logger {
    opts := &slog.HandlerOptions{Level: parseLevel(level)}
    var handler slog.Handler
    if strings.EqualFold(format, "json") {
        handler = slog.NewJSONHandler(os.Stdout, opts)
    } else {
        handler = slog.NewTextHandler(os.Stdout, opts)
    }
    logger := slog.New(handler)
    slog.SetDefault(logger)
    return logger
}

func parseLevel(s string) slog.Level {
    switch strings.ToLower(s) {
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
