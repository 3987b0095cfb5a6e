package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// LevelCritical sits above error and marks conditions that stop the process.
const LevelCritical = slog.Level(12)

// New returns a tint-backed logger writing to out. Unknown levels fall back
// to debug so a typo never silences the bot.
func New(out io.Writer, level string, color bool) *slog.Logger {
	lvl, ok := ParseLevel(level)

	replaceAttrs := func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) > 0 {
			return a
		}
		switch a.Key {
		case slog.SourceKey:
			if source, ok := a.Value.Any().(*slog.Source); ok {
				source.File = filepath.Base(source.File)
			}
		case slog.LevelKey:
			if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
				return slog.String(slog.LevelKey, "CRIT")
			}
		}
		return a
	}

	logger := slog.New(tint.NewHandler(out, &tint.Options{
		AddSource:   true,
		Level:       lvl,
		ReplaceAttr: replaceAttrs,
		NoColor:     !color,
	}))
	if !ok {
		logger.Warn("unsupported log level, using debug", slog.String(FieldLevel, level))
	}
	return logger
}

// Setup builds the process logger. Colour is used only when out is a
// terminal. With a log file configured, lines go to both out and the file,
// never coloured. The returned close func is always safe to call.
func Setup(out io.Writer, level, file string) (*slog.Logger, func() error, error) {
	if file == "" {
		return New(out, level, IsTerminal(out)), func() error { return nil }, nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: open %s: %w", file, err)
	}
	return New(io.MultiWriter(out, f), level, false), f.Close, nil
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// ParseLevel maps a case-insensitive level name to a slog level.
func ParseLevel(raw string) (slog.Level, bool) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(raw)))); err != nil {
		return slog.LevelDebug, false
	}
	return lvl, true
}
