// Package logging строит *slog.Logger для сервисов из строковых настроек.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Форматы вывода логов
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel разбирает уровень логирования (debug, info, warn, error)
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q: %w", level, err)
	}
	return l, nil
}

// New создает logger с заданным уровнем и форматом, пишущий в w
func New(level, format string, w io.Writer) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	case FormatText, "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return slog.New(handler), nil
}
