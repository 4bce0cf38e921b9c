// Package statuscmder provides the status command for displaying the chat
// session saved in the .lokallens directory.
package statuscmder

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lokallens/lokallens/pkg/cliui"
	"github.com/lokallens/lokallens/pkg/dotdir"
	"github.com/lokallens/lokallens/pkg/utils"
)

const previewLen = 72

const statusLongDesc string = `Show the saved chat session.

Reads the local .lokallens/ directory (or ~/.lokallens/) and lists the
messages "lokallens chat" will resume with. If nothing is saved, the next
chat starts a new conversation.

Examples:
  lokallens status`

const statusShortDesc string = "Show the saved chat session"

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runStatus(cmd.OutOrStdout(), configDir)
		},
	}

	return cmd
}

func runStatus(out io.Writer, configDir string) error {
	session, err := dotdir.NewManager().LoadSession(configDir)
	if err != nil {
		return fmt.Errorf("loading chat session: %w", err)
	}

	if session == nil || len(session.Messages) == 0 {
		fmt.Fprintf(out, "  %s No saved session. Next chat will start a new conversation.\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Fprintf(out, "\n  %s  %s\n", cliui.KeyStyle.Render("Updated: "), cliui.ValueStyle.Render(session.UpdatedAt.Local().Format("2006-01-02 15:04:05")))
	fmt.Fprintf(out, "  %s  %s\n\n", cliui.KeyStyle.Render("Messages:"), cliui.NameStyle.Render(strconv.Itoa(len(session.Messages))))

	for i, msg := range session.Messages {
		fmt.Fprintf(out, "  %s %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
			cliui.RoleStyle.Render("["+msg.Role+"]"),
			cliui.PreviewStyle.Render(utils.Truncate(msg.Content, previewLen)),
		)
	}

	fmt.Fprintln(out)
	return nil
}
