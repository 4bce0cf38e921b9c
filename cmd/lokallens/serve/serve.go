// Package servecmder provides the serve command, which runs the chat proxy
// and, when transcripts are enabled, the transcript API.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lokallens/lokallens/api"
	mcpapi "github.com/lokallens/lokallens/api/mcp"
	"github.com/lokallens/lokallens/pkg/cliui"
	"github.com/lokallens/lokallens/pkg/config"
	"github.com/lokallens/lokallens/pkg/dotdir"
	"github.com/lokallens/lokallens/pkg/eventstream"
	"github.com/lokallens/lokallens/pkg/eventstream/kafka"
	"github.com/lokallens/lokallens/pkg/eventstream/nop"
	"github.com/lokallens/lokallens/pkg/llm/provider"
	"github.com/lokallens/lokallens/pkg/logger"
	"github.com/lokallens/lokallens/pkg/storage"
	"github.com/lokallens/lokallens/pkg/storage/inmemory"
	"github.com/lokallens/lokallens/pkg/storage/postgres"
	"github.com/lokallens/lokallens/pkg/storage/sqlite"
	"github.com/lokallens/lokallens/proxy"
	"github.com/lokallens/lokallens/proxy/worker"
)

const (
	driverMemory   = "memory"
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"

	publisherNop   = "nop"
	publisherKafka = "kafka"

	defaultSQLiteFile = "transcripts.sqlite"
)

// serveFlagKeys are the registry flags serve binds into viper.
var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagAPIListen,
	config.FlagProvider,
	config.FlagModel,
	config.FlagBaseURL,
	config.FlagTimeout,
	config.FlagAllowedOrigins,
	config.FlagRateLimit,
	config.FlagTranscripts,
	config.FlagTranscriptsDrv,
	config.FlagTranscriptsDSN,
	config.FlagWorkers,
	config.FlagEventsPublisher,
	config.FlagEventsBrokers,
	config.FlagEventsTopic,
	config.FlagMCP,
	config.FlagLogJSON,
	config.FlagLogFile,
}

type serveCommander struct {
	// Flag targets. Values are read back through viper so config.toml and
	// LOKALLENS_* variables apply when a flag is not set.
	listen, apiListen, providerType, model, baseURL, timeout string
	transcriptsDriver, transcriptsDSN, eventsPublisher       string
	eventsTopic, logFile                                     string
	allowedOrigins, eventsBrokers                            []string
	rateLimit                                                int
	workers                                                  uint
	transcripts, mcp, logJSON                                bool

	configDir string
	cfg       *config.Config
	logger    *slog.Logger
}

// services is everything serve runs, in the order it must be torn down.
type services struct {
	proxy     *proxy.Proxy
	api       *api.Server
	publisher eventstream.Publisher
	driver    storage.Driver
}

const serveLongDesc string = `Run the Lokallens chat proxy.

The proxy answers POST /api/chat with the Lokallens persona, forwarding the
conversation to the configured provider. The provider credential is read
once at startup from LOKALLENS_PROVIDER_API_KEY or GEMINI_API_KEY. Without
it the server still starts and every chat request reports the missing key.

With --transcripts, completed exchanges are recorded in the background and
the transcript API is served on --api-listen. With --mcp, an MCP endpoint
exposing the ask_lokallens tool is mounted on the proxy.

Examples:
  lokallens serve
  lokallens serve --listen :8080 --allowed-origins https://lokallens.id
  lokallens serve --transcripts --transcripts-driver sqlite
  lokallens serve --provider openai --model gpt-4o-mini`

const serveShortDesc string = "Run the Lokallens chat proxy"

func NewServeCmd() *cobra.Command {
	return newServeCmd(&serveCommander{})
}

func newServeCmd(cmder *serveCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlagKeys)

			cmder.cfg, err = config.FromViper(v)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cmder.cfg.Log.Debug = true
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.apiListen)
	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.providerType)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddStringSliceFlag(cmd, config.Flags, config.FlagAllowedOrigins, &cmder.allowedOrigins)
	config.AddIntFlag(cmd, config.Flags, config.FlagRateLimit, &cmder.rateLimit)
	config.AddBoolFlag(cmd, config.Flags, config.FlagTranscripts, &cmder.transcripts)
	config.AddStringFlag(cmd, config.Flags, config.FlagTranscriptsDrv, &cmder.transcriptsDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagTranscriptsDSN, &cmder.transcriptsDSN)
	config.AddUintFlag(cmd, config.Flags, config.FlagWorkers, &cmder.workers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsPublisher, &cmder.eventsPublisher)
	config.AddStringSliceFlag(cmd, config.Flags, config.FlagEventsBrokers, &cmder.eventsBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsTopic, &cmder.eventsTopic)
	config.AddBoolFlag(cmd, config.Flags, config.FlagMCP, &cmder.mcp)
	config.AddBoolFlag(cmd, config.Flags, config.FlagLogJSON, &cmder.logJSON)
	config.AddStringFlag(cmd, config.Flags, config.FlagLogFile, &cmder.logFile)

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	c.logger = newLogger(c.cfg.Log)

	svc, err := c.build(ctx)
	if err != nil {
		return err
	}
	defer c.shutdown(svc)

	errChan := make(chan error, 2)

	go func() {
		if err := svc.proxy.Run(); err != nil {
			errChan <- fmt.Errorf("proxy error: %w", err)
		}
	}()

	if svc.api != nil {
		go func() {
			if err := svc.api.Run(); err != nil {
				errChan <- fmt.Errorf("API server error: %w", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return nil
	}
}

// build wires the generator, optional transcript recording, the proxy, and
// the optional MCP endpoint and transcript API from c.cfg.
func (c *serveCommander) build(ctx context.Context) (*services, error) {
	cfg := c.cfg

	timeout, err := cfg.UpstreamTimeout()
	if err != nil {
		return nil, err
	}

	generator, err := c.newGenerator(timeout)
	if err != nil {
		return nil, err
	}

	svc := &services{}
	var pool *worker.Pool

	if cfg.Transcripts.Enabled {
		svc.driver, err = c.newDriver(ctx)
		if err != nil {
			return nil, err
		}

		svc.publisher, err = newPublisher(cfg.Events)
		if err != nil {
			c.shutdown(svc)
			return nil, err
		}

		pool, err = worker.NewPool(&worker.Config{
			Driver:     svc.driver,
			Publisher:  svc.publisher,
			NumWorkers: cfg.Transcripts.Workers,
			QueueSize:  cfg.Transcripts.QueueSize,
			Logger:     c.logger,
		})
		if err != nil {
			c.shutdown(svc)
			return nil, fmt.Errorf("creating transcript pool: %w", err)
		}

		svc.api = api.NewServer(api.Config{ListenAddr: cfg.API.Listen}, svc.driver, c.logger)
	}

	svc.proxy = proxy.New(proxy.Config{
		ListenAddr:      cfg.Server.Listen,
		APIKey:          cfg.Provider.APIKey,
		Model:           cfg.Provider.Model,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		RateLimit:       cfg.Server.RateLimit,
		UpstreamTimeout: timeout,
	}, generator, pool, c.logger)

	if cfg.MCP.Enabled {
		mcpServer, err := mcpapi.NewServer(mcpapi.Config{
			Completer: svc.proxy,
			Logger:    c.logger,
		})
		if err != nil {
			c.shutdown(svc)
			return nil, fmt.Errorf("creating MCP server: %w", err)
		}
		svc.proxy.Mount(cfg.MCP.Path, mcpServer.Handler())
		c.logger.Info("mounted MCP endpoint", "path", cfg.MCP.Path)
	}

	return svc, nil
}

// newGenerator builds the provider client. A missing credential is not an
// error: the proxy is started without a generator and reports the
// configuration error per request.
func (c *serveCommander) newGenerator(timeout time.Duration) (provider.Generator, error) {
	p := c.cfg.Provider
	if !slices.Contains(provider.SupportedProviders(), p.Type) {
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", p.Type, provider.SupportedProviders())
	}

	if p.APIKey == "" {
		c.logger.Warn("no provider credential configured, chat requests will fail",
			"env", []string{config.APIKeyEnv, config.GeminiAPIKeyEnv},
		)
		return nil, nil
	}

	generator, err := provider.New(provider.Options{
		Type:    p.Type,
		APIKey:  p.APIKey,
		BaseURL: p.BaseURL,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating provider: %w", err)
	}

	c.logger.Info("using provider", "provider", generator.Name(), "model", p.Model)
	return generator, nil
}

func (c *serveCommander) newDriver(ctx context.Context) (storage.Driver, error) {
	t := c.cfg.Transcripts

	switch t.Driver {
	case driverMemory, "":
		c.logger.Info("using in-memory transcript storage")
		return inmemory.NewDriver(), nil

	case driverSQLite:
		path := t.DSN
		if path == "" {
			dir, err := dotdir.NewManager().Target(c.configDir)
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, defaultSQLiteFile)
		}

		drv, err := sqlite.NewSQLiteDriver(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		c.logger.Info("using SQLite transcript storage", "path", path)
		return drv, nil

	case driverPostgres:
		if t.DSN == "" {
			return nil, errors.New("transcripts.dsn is required for the postgres driver")
		}

		drv, err := postgres.NewDriver(ctx, t.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		c.logger.Info("using PostgreSQL transcript storage")
		return drv, nil

	default:
		return nil, fmt.Errorf("unknown transcripts driver: %q (supported: %s, %s, %s)",
			t.Driver, driverMemory, driverSQLite, driverPostgres)
	}
}

func newPublisher(e config.EventsConfig) (eventstream.Publisher, error) {
	switch e.Publisher {
	case publisherNop, "":
		return nop.NewPublisher(), nil

	case publisherKafka:
		pub, err := kafka.NewPublisher(kafka.Config{
			Brokers:  e.Brokers,
			Topic:    e.Topic,
			ClientID: "lokallens",
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		return pub, nil

	default:
		return nil, fmt.Errorf("unknown events publisher: %q (supported: %s, %s)",
			e.Publisher, publisherNop, publisherKafka)
	}
}

func newLogger(l config.LogConfig) *slog.Logger {
	return logger.New(
		logger.WithDebug(l.Debug),
		logger.WithJSON(l.JSON),
		logger.WithPretty(!l.JSON && cliui.IsTerminal(os.Stderr)),
		logger.WithWriter(os.Stderr),
		logger.WithFile(l.File),
	)
}

// shutdown stops the servers first so the worker pool drains into a still
// open driver and publisher.
func (c *serveCommander) shutdown(svc *services) {
	if svc.proxy != nil {
		if err := svc.proxy.Close(); err != nil {
			c.logger.Error("closing proxy", "error", err)
		}
	}
	if svc.api != nil {
		if err := svc.api.Shutdown(); err != nil {
			c.logger.Error("closing API server", "error", err)
		}
	}
	if svc.publisher != nil {
		if err := svc.publisher.Close(); err != nil {
			c.logger.Error("closing publisher", "error", err)
		}
	}
	if svc.driver != nil {
		if err := svc.driver.Close(); err != nil {
			c.logger.Error("closing storage driver", "error", err)
		}
	}
}
