package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline.
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "server.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling the Add*Flag helpers and
// BindRegisteredFlags to avoid drift from one command to another.
const (
	FlagListen          = "listen"
	FlagAPIListen       = "api-listen"
	FlagProvider        = "provider"
	FlagModel           = "model"
	FlagBaseURL         = "base-url"
	FlagTimeout         = "timeout"
	FlagAllowedOrigins  = "allowed-origins"
	FlagRateLimit       = "rate-limit"
	FlagTranscripts     = "transcripts"
	FlagTranscriptsDrv  = "transcripts-driver"
	FlagTranscriptsDSN  = "transcripts-dsn"
	FlagWorkers         = "workers"
	FlagEventsPublisher = "events-publisher"
	FlagEventsBrokers   = "events-brokers"
	FlagEventsTopic     = "events-topic"
	FlagMCP             = "mcp"
	FlagLogJSON         = "log-json"
	FlagLogFile         = "log-file"
	FlagProxyTarget     = "proxy-target"
)

// Flags is the registry shared by every lokallens command.
var Flags = FlagSet{
	FlagListen:          {Name: "listen", Shorthand: "l", ViperKey: "server.listen", Description: "Address for the chat proxy to listen on"},
	FlagAPIListen:       {Name: "api-listen", Shorthand: "a", ViperKey: "api.listen", Description: "Address for the transcript API to listen on"},
	FlagProvider:        {Name: "provider", Shorthand: "p", ViperKey: "provider.type", Description: "Generation provider (gemini, openai)"},
	FlagModel:           {Name: "model", Shorthand: "m", ViperKey: "provider.model", Description: "Model identifier sent to the provider"},
	FlagBaseURL:         {Name: "base-url", ViperKey: "provider.base_url", Description: "Override the provider API base URL"},
	FlagTimeout:         {Name: "timeout", ViperKey: "provider.timeout", Description: "Upstream call timeout (e.g. 60s; unset or 0 for none)"},
	FlagAllowedOrigins:  {Name: "allowed-origins", ViperKey: "server.allowed_origins", Description: "Comma separated CORS origins allowed to call the proxy"},
	FlagRateLimit:       {Name: "rate-limit", ViperKey: "server.rate_limit", Description: "Chat requests per client IP per minute (0 disables)"},
	FlagTranscripts:     {Name: "transcripts", ViperKey: "transcripts.enabled", Description: "Record chat transcripts and serve the transcript API"},
	FlagTranscriptsDrv:  {Name: "transcripts-driver", ViperKey: "transcripts.driver", Description: "Transcript storage driver (memory, sqlite, postgres)"},
	FlagTranscriptsDSN:  {Name: "transcripts-dsn", ViperKey: "transcripts.dsn", Description: "SQLite path or PostgreSQL connection string"},
	FlagWorkers:         {Name: "workers", ViperKey: "transcripts.workers", Description: "Number of transcript recording workers"},
	FlagEventsPublisher: {Name: "events-publisher", ViperKey: "events.publisher", Description: "Transcript event publisher (nop, kafka)"},
	FlagEventsBrokers:   {Name: "events-brokers", ViperKey: "events.brokers", Description: "Comma separated Kafka brokers"},
	FlagEventsTopic:     {Name: "events-topic", ViperKey: "events.topic", Description: "Kafka topic for transcript events"},
	FlagMCP:             {Name: "mcp", ViperKey: "mcp.enabled", Description: "Mount the MCP endpoint on the chat proxy"},
	FlagLogJSON:         {Name: "log-json", ViperKey: "log.json", Description: "Write logs as JSON"},
	FlagLogFile:         {Name: "log-file", ViperKey: "log.file", Description: "Also write JSON logs to a rotating file"},
	FlagProxyTarget:     {Name: "proxy-target", Shorthand: "t", ViperKey: "client.proxy_target", Description: "Lokallens proxy URL"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddStringSliceFlag registers a comma separated string list flag on cmd.
func AddStringSliceFlag(cmd *cobra.Command, fs FlagSet, key string, target *[]string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetStringSlice(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringSliceVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringSliceVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaults returns a viper instance holding only NewDefaultConfig values.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
