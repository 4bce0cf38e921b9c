// Package lokallenscmder is the root lokallens command.
package lokallenscmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/lokallens/lokallens/cmd/lokallens/chat"
	configcmder "github.com/lokallens/lokallens/cmd/lokallens/config"
	initcmder "github.com/lokallens/lokallens/cmd/lokallens/init"
	servecmder "github.com/lokallens/lokallens/cmd/lokallens/serve"
	statuscmder "github.com/lokallens/lokallens/cmd/lokallens/status"
	versioncmder "github.com/lokallens/lokallens/cmd/version"
)

const lokallensLongDesc string = `Lokallens is the chat backend of the Lokallens Indonesian culture guide.

Run the proxy and talk to it:
  lokallens serve     Run the chat proxy
  lokallens chat      Chat with a running proxy
  lokallens config    Manage .lokallens/config.toml
  lokallens init      Create a local .lokallens/ directory
  lokallens status    Show the saved chat session`

const lokallensShortDesc string = "Lokallens - Indonesian culture chat proxy"

func NewLokallensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "lokallens",
		Short:        lokallensShortDesc,
		Long:         lokallensLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml (default: ./.lokallens or ~/.lokallens)")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
