// Package api provides an HTTP API server for inspecting recorded chat transcripts.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":3001")
	ListenAddr string

	// DefaultLimit caps /transcripts when no limit is given. Defaults to 50.
	DefaultLimit int

	// MaxLimit is the largest limit a client may request. Defaults to 500.
	MaxLimit int
}
