// Package logging builds the application's structured logger. Output goes to
// a file so nothing is written to the terminal while the TUI owns it.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Component names used with Logger.With("component", ...).
const (
	CompDB      = "db"
	CompPicker  = "picker"
	CompService = "service"
	CompUI      = "ui"
	CompCLI     = "cli"
)

// ParseLevel maps a config string to a slog level; unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// New returns a JSON logger writing to w.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Open opens (appending) the log file at path and returns a logger on it
// plus a cleanup func. The standard library logger is redirected to the same
// file. An empty path yields a discarding logger.
func Open(path, level string) (*slog.Logger, func(), error) {
	if strings.TrimSpace(path) == "" {
		return Discard(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := tea.LogToFile(path, "fintree")
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, level), func() { _ = f.Close() }, nil
}
