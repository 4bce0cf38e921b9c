// Package configcmder provides the config command for managing persistent
// lokallens configuration stored in the .lokallens/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent lokallens configuration.

Configuration is stored as config.toml in the .lokallens/ directory and
provides default values for command flags. CLI flags and LOKALLENS_*
environment variables always take precedence over config file values.

The provider credential is never stored here. Export it as
LOKALLENS_PROVIDER_API_KEY or GEMINI_API_KEY instead.

Keys use dotted notation matching the TOML section structure:
  server.listen, server.allowed_origins, server.rate_limit,
  provider.type, provider.model, provider.base_url, provider.timeout,
  api.listen, client.proxy_target,
  transcripts.enabled, transcripts.driver, transcripts.dsn,
  transcripts.workers, transcripts.queue_size,
  events.publisher, events.brokers, events.topic,
  mcp.enabled, mcp.path, log.debug, log.json, log.file

Examples:
  lokallens config set provider.model gemini-2.5-flash
  lokallens config set server.allowed_origins https://lokallens.id
  lokallens config get provider.model
  lokallens config list`

const configShortDesc string = "Manage persistent lokallens configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// validKeysHint is appended to unknown key errors.
func validKeysHint() string {
	return "\n\nValid keys: " + joinKeys()
}
