package logger

import (
	"io"
	"log/slog"
)

// Option adjusts how New builds the logger.
type Option func(*config)

// WithDebug lowers the level to Debug. Passing false keeps Info.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.level = slog.LevelInfo
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithPretty renders console records with charmbracelet/log for terminals.
// WithJSON wins when both are set.
func WithPretty(pretty bool) Option {
	return func(c *config) { c.pretty = pretty }
}

// WithJSON writes console records as JSON lines, for running serve under a
// process supervisor.
func WithJSON(json bool) Option {
	return func(c *config) { c.json = json }
}

// WithWriter replaces the console destination. New uses os.Stdout otherwise.
func WithWriter(w io.Writer) Option {
	return WithWriters(w)
}

// WithWriters sends console records to every w.
func WithWriters(w ...io.Writer) Option {
	return func(c *config) { c.writers = w }
}

// WithSource adds the calling file and line to each record.
func WithSource(source bool) Option {
	return func(c *config) { c.source = source }
}

// WithFile also appends JSON records to a size-rotated file at path, next to
// the console output. Empty leaves file logging off.
func WithFile(path string) Option {
	return func(c *config) { c.file = path }
}
