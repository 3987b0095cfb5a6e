package logging

import (
	"context"
	"log/slog"
)

// The helpers below accept a nil logger so optional collaborators can log
// without guarding every call site.

func Debug(logger *slog.Logger, msg string, args ...any) {
	emit(logger, slog.LevelDebug, msg, args)
}

func Info(logger *slog.Logger, msg string, args ...any) {
	emit(logger, slog.LevelInfo, msg, args)
}

// Error attaches err under the "error" key when it is non-nil.
func Error(logger *slog.Logger, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err)
	}
	emit(logger, slog.LevelError, msg, args)
}

// Critical logs at LevelCritical, rendered as CRIT.
func Critical(logger *slog.Logger, msg string, args ...any) {
	emit(logger, LevelCritical, msg, args)
}

func emit(logger *slog.Logger, lvl slog.Level, msg string, args []any) {
	if logger == nil {
		return
	}
	logger.Log(context.Background(), lvl, msg, args...)
}
