package proxy

import "time"

// Config is the chat proxy configuration. It is read once at startup and
// injected into New; nothing is looked up per request.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":3000")
	ListenAddr string

	// APIKey is the generation service credential. When empty every chat
	// request fails with a configuration error and no outbound call is made.
	APIKey string

	// Model is the model identifier sent with every generation request.
	// Defaults to llm.DefaultModel.
	Model string

	// AllowedOrigins lists the website origins allowed to call the proxy
	// from a browser. Empty disables CORS handling.
	AllowedOrigins []string

	// RateLimit is the maximum number of chat requests per client IP per
	// minute. Zero disables rate limiting.
	RateLimit int

	// UpstreamTimeout bounds the outbound generation call. Zero means no bound.
	UpstreamTimeout time.Duration
}
