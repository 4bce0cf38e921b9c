// Package logger provides opinionated logging capabilities for lokallens
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 10
	maxLogBackups = 5
	maxLogAgeDays = 14
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	source  bool
	writers []io.Writer
	file    string
}

// New builds a *slog.Logger. Without options it writes text records at Info
// level to os.Stdout.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(c)
	}

	if len(c.writers) == 0 {
		c.writers = []io.Writer{os.Stdout}
	}

	var out io.Writer = c.writers[0]
	if len(c.writers) > 1 {
		out = io.MultiWriter(c.writers...)
	}

	l := slog.New(c.handler(out))
	if c.file == "" {
		return l
	}

	return Multi(l, slog.New(slog.NewJSONHandler(rotatingFile(c.file), &slog.HandlerOptions{
		Level:     c.level,
		AddSource: c.source,
	})))
}

// Nop returns a logger that discards every record.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func (c *config) handler(out io.Writer) slog.Handler {
	switch {
	case c.json:
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: c.level, AddSource: c.source})
	case c.pretty:
		return log.NewWithOptions(out, log.Options{
			Level:           log.Level(c.level),
			ReportTimestamp: true,
			ReportCaller:    c.source,
		})
	default:
		return slog.NewTextHandler(out, &slog.HandlerOptions{Level: c.level, AddSource: c.source})
	}
}

// rotatingFile returns a size-rotated log file writer. The parent directory
// is created when missing.
func rotatingFile(path string) io.Writer {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return io.Discard
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
}
