package config

import "github.com/lokallens/lokallens/pkg/llm"

const (
	defaultServerListen = ":3000"
	defaultAPIListen    = ":3001"

	defaultClientProxyTarget = "http://localhost:3000"

	defaultProviderType = "gemini"

	defaultTranscriptsDriver    = "memory"
	defaultTranscriptsWorkers   = 3
	defaultTranscriptsQueueSize = 256

	defaultEventsPublisher = "nop"
	defaultEventsTopic     = "lokallens.transcripts"

	defaultMCPPath = "/mcp"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen: defaultServerListen,
		},
		Provider: ProviderConfig{
			Type:  defaultProviderType,
			Model: llm.DefaultModel,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			ProxyTarget: defaultClientProxyTarget,
		},
		Transcripts: TranscriptsConfig{
			Driver:    defaultTranscriptsDriver,
			Workers:   defaultTranscriptsWorkers,
			QueueSize: defaultTranscriptsQueueSize,
		},
		Events: EventsConfig{
			Publisher: defaultEventsPublisher,
			Topic:     defaultEventsTopic,
		},
		MCP: MCPConfig{
			Path: defaultMCPPath,
		},
	}
}
