package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/lokallens/lokallens/pkg/dotdir"
)

const (
	// EnvPrefix prefixes every environment variable lokallens reads.
	EnvPrefix = "LOKALLENS"

	// APIKeyEnv and GeminiAPIKeyEnv name the environment variables the
	// provider credential is read from, in order of precedence.
	APIKeyEnv       = "LOKALLENS_PROVIDER_API_KEY"
	GeminiAPIKeyEnv = "GEMINI_API_KEY"

	apiKeyViperKey = "provider.api_key"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// found via dotdir resolution, and binds environment variables with the
// LOKALLENS_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (LOKALLENS_SERVER_LISTEN, LOKALLENS_PROVIDER_MODEL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	v.AddConfigPath(target)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv(apiKeyViperKey, APIKeyEnv, GeminiAPIKeyEnv); err != nil {
		return nil, fmt.Errorf("binding credential env: %w", err)
	}

	return v, nil
}

// FromViper materializes a Config from a viper instance built by InitViper,
// including the credential read from the environment.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Version: v.GetInt("version"),
		Server: ServerConfig{
			Listen:         v.GetString("server.listen"),
			AllowedOrigins: stringList(v, "server.allowed_origins"),
			RateLimit:      v.GetInt("server.rate_limit"),
		},
		Provider: ProviderConfig{
			Type:    v.GetString("provider.type"),
			Model:   v.GetString("provider.model"),
			BaseURL: v.GetString("provider.base_url"),
			Timeout: v.GetString("provider.timeout"),
			APIKey:  strings.TrimSpace(v.GetString(apiKeyViperKey)),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Client: ClientConfig{
			ProxyTarget: v.GetString("client.proxy_target"),
		},
		Transcripts: TranscriptsConfig{
			Enabled:   v.GetBool("transcripts.enabled"),
			Driver:    v.GetString("transcripts.driver"),
			DSN:       v.GetString("transcripts.dsn"),
			Workers:   v.GetUint("transcripts.workers"),
			QueueSize: v.GetUint("transcripts.queue_size"),
		},
		Events: EventsConfig{
			Publisher: v.GetString("events.publisher"),
			Brokers:   stringList(v, "events.brokers"),
			Topic:     v.GetString("events.topic"),
		},
		MCP: MCPConfig{
			Enabled: v.GetBool("mcp.enabled"),
			Path:    v.GetString("mcp.path"),
		},
		Log: LogConfig{
			Debug: v.GetBool("log.debug"),
			JSON:  v.GetBool("log.json"),
			File:  v.GetString("log.file"),
		},
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}
	if cfg.Server.RateLimit < 0 {
		return nil, fmt.Errorf("invalid server.rate_limit %d: must not be negative", cfg.Server.RateLimit)
	}
	if _, err := cfg.UpstreamTimeout(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// stringList reads a list that may come from TOML as an array or from the
// environment as a comma separated string.
func stringList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		out = append(out, SplitList(item)...)
	}
	return out
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Server
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)

	// Provider
	v.SetDefault("provider.type", d.Provider.Type)
	v.SetDefault("provider.model", d.Provider.Model)
	v.SetDefault("provider.base_url", d.Provider.BaseURL)
	v.SetDefault("provider.timeout", d.Provider.Timeout)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Client
	v.SetDefault("client.proxy_target", d.Client.ProxyTarget)

	// Transcripts
	v.SetDefault("transcripts.enabled", d.Transcripts.Enabled)
	v.SetDefault("transcripts.driver", d.Transcripts.Driver)
	v.SetDefault("transcripts.dsn", d.Transcripts.DSN)
	v.SetDefault("transcripts.workers", d.Transcripts.Workers)
	v.SetDefault("transcripts.queue_size", d.Transcripts.QueueSize)

	// Events
	v.SetDefault("events.publisher", d.Events.Publisher)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// MCP
	v.SetDefault("mcp.enabled", d.MCP.Enabled)
	v.SetDefault("mcp.path", d.MCP.Path)

	// Log
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.file", d.Log.File)
}
