package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent lokallens configuration stored as
// config.toml in the .lokallens/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Server      ServerConfig      `toml:"server"`
	Provider    ProviderConfig    `toml:"provider"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	Transcripts TranscriptsConfig `toml:"transcripts"`
	Events      EventsConfig      `toml:"events"`
	MCP         MCPConfig         `toml:"mcp"`
	Log         LogConfig         `toml:"log"`
}

// ServerConfig holds settings for the chat proxy server.
type ServerConfig struct {
	Listen         string   `toml:"listen,omitempty"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`

	// RateLimit is the number of chat requests allowed per client IP per
	// minute. 0 disables limiting.
	RateLimit int `toml:"rate_limit,omitempty"`
}

// ProviderConfig holds settings for the upstream generative-language service.
type ProviderConfig struct {
	Type    string `toml:"type,omitempty"`
	Model   string `toml:"model,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
	Timeout string `toml:"timeout,omitempty"`

	// APIKey is only ever read from the environment and is never persisted.
	APIKey string `toml:"-"`
}

// APIConfig holds transcript inspection API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// proxy (e.g. lokallens chat). Values are full URLs.
type ClientConfig struct {
	ProxyTarget string `toml:"proxy_target,omitempty"`
}

// TranscriptsConfig holds settings for async transcript recording.
type TranscriptsConfig struct {
	Enabled   bool   `toml:"enabled,omitempty"`
	Driver    string `toml:"driver,omitempty"`
	DSN       string `toml:"dsn,omitempty"`
	Workers   uint   `toml:"workers,omitempty"`
	QueueSize uint   `toml:"queue_size,omitempty"`
}

// EventsConfig holds transcript event publishing settings.
type EventsConfig struct {
	Publisher string   `toml:"publisher,omitempty"`
	Brokers   []string `toml:"brokers,omitempty"`
	Topic     string   `toml:"topic,omitempty"`
}

// MCPConfig holds settings for the MCP endpoint mounted on the proxy.
type MCPConfig struct {
	Enabled bool   `toml:"enabled,omitempty"`
	Path    string `toml:"path,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Debug bool   `toml:"debug,omitempty"`
	JSON  bool   `toml:"json,omitempty"`
	File  string `toml:"file,omitempty"`
}

// UpstreamTimeout parses Provider.Timeout. An empty value means no timeout.
func (c *Config) UpstreamTimeout() (time.Duration, error) {
	if c.Provider.Timeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(c.Provider.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid provider.timeout %q: %w", c.Provider.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid provider.timeout %q: must not be negative", c.Provider.Timeout)
	}

	return d, nil
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
// provider.api_key is not listed since it is never written to config.toml.
var configKeys = map[string]configKeyInfo{
	"server.listen": stringKey(func(c *Config) *string { return &c.Server.Listen }),
	"server.allowed_origins": listKey(func(c *Config) *[]string { return &c.Server.AllowedOrigins }),
	"server.rate_limit": {
		get: func(c *Config) string { return strconv.Itoa(c.Server.RateLimit) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid value for server.rate_limit: %q", v)
			}
			c.Server.RateLimit = n
			return nil
		},
	},
	"provider.type":     stringKey(func(c *Config) *string { return &c.Provider.Type }),
	"provider.model":    stringKey(func(c *Config) *string { return &c.Provider.Model }),
	"provider.base_url": stringKey(func(c *Config) *string { return &c.Provider.BaseURL }),
	"provider.timeout": {
		get: func(c *Config) string { return c.Provider.Timeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for provider.timeout: %w", err)
			}
			c.Provider.Timeout = v
			return nil
		},
	},
	"api.listen":          stringKey(func(c *Config) *string { return &c.API.Listen }),
	"client.proxy_target": stringKey(func(c *Config) *string { return &c.Client.ProxyTarget }),
	"transcripts.enabled": boolKey("transcripts.enabled", func(c *Config) *bool { return &c.Transcripts.Enabled }),
	"transcripts.driver":  stringKey(func(c *Config) *string { return &c.Transcripts.Driver }),
	"transcripts.dsn":     stringKey(func(c *Config) *string { return &c.Transcripts.DSN }),
	"transcripts.workers": uintKey("transcripts.workers", func(c *Config) *uint { return &c.Transcripts.Workers }),
	"transcripts.queue_size": uintKey("transcripts.queue_size", func(c *Config) *uint {
		return &c.Transcripts.QueueSize
	}),
	"events.publisher": stringKey(func(c *Config) *string { return &c.Events.Publisher }),
	"events.brokers":   listKey(func(c *Config) *[]string { return &c.Events.Brokers }),
	"events.topic":     stringKey(func(c *Config) *string { return &c.Events.Topic }),
	"mcp.enabled":      boolKey("mcp.enabled", func(c *Config) *bool { return &c.MCP.Enabled }),
	"mcp.path":         stringKey(func(c *Config) *string { return &c.MCP.Path }),
	"log.debug":        boolKey("log.debug", func(c *Config) *bool { return &c.Log.Debug }),
	"log.json":         boolKey("log.json", func(c *Config) *bool { return &c.Log.JSON }),
	"log.file":         stringKey(func(c *Config) *string { return &c.Log.File }),
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

// listKey reads and writes a string list as a comma separated value.
func listKey(field func(c *Config) *[]string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strings.Join(*field(c), ",") },
		set: func(c *Config, v string) error { *field(c) = SplitList(v); return nil },
	}
}

// SplitList splits a comma separated value, trimming blanks and dropping
// empty entries.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
