// Package chatcmder provides the chat command, an interactive terminal
// client for a running Lokallens chat proxy.
package chatcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/lokallens/lokallens/pkg/cliui"
	"github.com/lokallens/lokallens/pkg/config"
	"github.com/lokallens/lokallens/pkg/dotdir"
	"github.com/lokallens/lokallens/pkg/llm"
	"github.com/lokallens/lokallens/pkg/logger"
	"github.com/lokallens/lokallens/proxy"
)

const (
	cmdExit  = "/exit"
	cmdReset = "/reset"

	// requestTimeout bounds one round trip; generation can be slow.
	requestTimeout = 2 * time.Minute
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("kamu> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("lokallens> ")
)

type chatCommander struct {
	proxyTarget string
	fresh       bool
	configDir   string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// interactive enables the spinner and markdown rendering.
	interactive bool

	client  *http.Client
	manager *dotdir.Manager
	logger  *slog.Logger
}

const chatLongDesc string = `Start an interactive chat session with a running Lokallens proxy.

Each message is sent with the full conversation so far. The conversation is
saved to .lokallens/session.json after every reply and resumed on the next
run. Use --new to start over.

Commands inside the session:
  /reset   Start a new conversation
  /exit    Quit (Ctrl+D works too)

Examples:
  lokallens chat
  lokallens chat --new --proxy-target http://localhost:8080`

const chatShortDesc string = "Chat with a running Lokallens proxy"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagProxyTarget})
			cmder.proxyTarget = v.GetString("client.proxy_target")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			cmder.logger = logger.New(logger.WithDebug(debug), logger.WithPretty(true), logger.WithWriter(cmd.ErrOrStderr()))
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			cmder.interactive = cliui.IsTerminal(cmder.out)
			cmder.client = &http.Client{Timeout: requestTimeout}
			cmder.manager = dotdir.NewManager()

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProxyTarget, &cmder.proxyTarget)
	cmd.Flags().BoolVar(&cmder.fresh, "new", false, "Discard the saved conversation and start fresh")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	messages, err := c.loadHistory()
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out)
	if len(messages) > 0 {
		fmt.Fprintf(c.out, "  %s Melanjutkan percakapan %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(fmt.Sprintf("(%d pesan)", len(messages))),
		)
	} else {
		fmt.Fprintf(c.out, "  %s Percakapan baru\n", cliui.DimStyle.Render("●"))
	}
	fmt.Fprintf(c.out, "  %s %s\n\n", cliui.KeyStyle.Render("Proxy:"), cliui.NameStyle.Render(c.proxyTarget))
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Ketik pesan lalu Enter. /reset untuk mulai ulang, /exit atau Ctrl+D untuk keluar."))

	scanner := bufio.NewScanner(c.in)

	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case cmdExit:
			fmt.Fprintln(c.out)
			return nil
		case cmdReset:
			messages = nil
			if err := c.manager.ClearSession(c.configDir); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "  %s Percakapan baru\n\n", cliui.SuccessMark)
			continue
		}

		messages = append(messages, llm.NewUserTurn(input))

		reply, err := c.ask(ctx, messages)
		if err != nil {
			fmt.Fprintf(c.errOut, "  %s %v\n\n", cliui.FailMark, err)
			// Drop the failed message so the user can retry.
			messages = messages[:len(messages)-1]
			continue
		}

		messages = append(messages, llm.NewAssistantTurn(reply))
		c.printReply(reply)

		if err := c.manager.SaveSession(&dotdir.ChatSession{
			Messages:  messages,
			UpdatedAt: time.Now().UTC(),
		}, c.configDir); err != nil {
			c.logger.Warn("could not save chat session", "error", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

func (c *chatCommander) loadHistory() ([]llm.ConversationTurn, error) {
	if c.fresh {
		if err := c.manager.ClearSession(c.configDir); err != nil {
			return nil, err
		}
		return nil, nil
	}

	session, err := c.manager.LoadSession(c.configDir)
	if err != nil {
		return nil, fmt.Errorf("loading chat session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	return session.Messages, nil
}

// ask sends the conversation to the proxy, showing a spinner on terminals.
func (c *chatCommander) ask(ctx context.Context, messages []llm.ConversationTurn) (string, error) {
	if !c.interactive {
		return c.send(ctx, messages)
	}

	var reply string
	err := cliui.Step(c.out, "Berpikir...", func() error {
		var err error
		reply, err = c.send(ctx, messages)
		return err
	})
	return reply, err
}

// send posts one ProxyRequest and returns the reply text.
func (c *chatCommander) send(ctx context.Context, messages []llm.ConversationTurn) (string, error) {
	body, err := json.Marshal(llm.ProxyRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimSuffix(c.proxyTarget, "/") + proxy.ChatPath
	c.logger.Debug("sending chat request",
		"url", url,
		"message_count", len(messages),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request to proxy: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp llm.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Error == "" {
			return "", fmt.Errorf("proxy returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		}
		if errResp.Detail != "" {
			return "", fmt.Errorf("%s (%s)", errResp.Error, errResp.Detail)
		}
		return "", fmt.Errorf("%s", errResp.Error)
	}

	var proxyResp llm.ProxyResponse
	if err := json.Unmarshal(respBody, &proxyResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return proxyResp.Text(), nil
}

func (c *chatCommander) printReply(reply string) {
	if !c.interactive {
		fmt.Fprintf(c.out, "%s%s\n\n", assistantPrompt, reply)
		return
	}

	rendered, err := cliui.RenderMarkdown(reply, cliui.WrapWidth(c.out))
	if err != nil {
		c.logger.Debug("markdown rendering failed", "error", err)
	}
	fmt.Fprintf(c.out, "%s\n%s\n", assistantPrompt, rendered)
}
