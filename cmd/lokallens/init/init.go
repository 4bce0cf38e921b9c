// Package initcmder provides the init command for initializing a local
// .lokallens directory in the current working directory.
package initcmder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lokallens/lokallens/pkg/cliui"
	"github.com/lokallens/lokallens/pkg/config"
)

const (
	dirName    = ".lokallens"
	configFile = "config.toml"

	remoteFetchTimeout = 15 * time.Second
)

const initLongDesc string = `Initialize a new .lokallens/ directory in the current working directory.

Creates a local .lokallens/ directory that takes precedence over ~/.lokallens/
for configuration and the saved chat session.

Use --preset to write a config.toml. A preset is either a provider name
(gemini, openai) or an http(s) URL serving a config.toml.

Examples:
  lokallens init
  lokallens init --preset openai
  lokallens init --preset https://example.com/lokallens.toml`

const initShortDesc string = "Initialize a local .lokallens/ directory"

type initCommander struct {
	preset string
	out    io.Writer
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "Provider preset name or URL of a config.toml")

	return cmd
}

func (c *initCommander) run(ctx context.Context) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .lokallens directory: %w", err)
	}

	configPath := filepath.Join(dir, configFile)
	_, statErr := os.Stat(configPath)
	if c.preset == "" && statErr == nil {
		fmt.Fprintf(c.out, "Already initialized: %s\n", dir)
		return nil
	}

	cfg, err := c.resolveConfig(ctx)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s Initialized %s\n", cliui.SuccessMark, cliui.NameStyle.Render(dir))
	return nil
}

// resolveConfig returns the config to write: defaults, a named preset, or a
// config.toml fetched from a URL.
func (c *initCommander) resolveConfig(ctx context.Context) (*config.Config, error) {
	switch {
	case c.preset == "":
		return config.NewDefaultConfig(), nil
	case strings.HasPrefix(c.preset, "http://"), strings.HasPrefix(c.preset, "https://"):
		return fetchRemoteConfig(ctx, c.preset)
	default:
		return config.PresetConfig(c.preset)
	}
}

func fetchRemoteConfig(ctx context.Context, url string) (*config.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, remoteFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
