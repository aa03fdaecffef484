package observe

import (
	"io"
	"log/slog"
	"os"

	"github.com/tmarkko/quillcast/internal/config"
	"github.com/tmarkko/quillcast/pkg/status"
)

// NewLogger builds the process logger: a text handler on stderr with source
// locations at the configured level.
func NewLogger(level config.LogLevel) *slog.Logger {
	return newLoggerTo(os.Stderr, level)
}

func newLoggerTo(w io.Writer, level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: true,
	}))
}

// ErrorLog records a code-tagged error. It never fails the caller: an empty
// message is dropped with a debug diagnostic instead of being escalated.
func ErrorLog(logger *slog.Logger, code status.Code, msg string, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	if msg == "" {
		logger.Debug("dropping error log with empty message", "code", code.String())
		return
	}
	logger.Error(msg, append([]any{"code", code.String()}, args...)...)
}
