package api

import (
	"log/slog"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lokallens/lokallens/pkg/storage"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Server is the API server for inspecting recorded transcripts
type Server struct {
	config Config
	driver storage.Driver
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The driver is injected so it can be shared with the proxy's worker pool.
func NewServer(config Config, driver storage.Driver, logger *slog.Logger) *Server {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = defaultListLimit
	}
	if config.MaxLimit <= 0 {
		config.MaxLimit = maxListLimit
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	s := &Server{
		config: config,
		driver: driver,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/transcripts", s.handleListTranscripts)
	app.Get("/transcripts/:id", s.handleGetTranscript)

	return s
}

// App returns the underlying fiber app, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the API server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting API server",
		"listen", listener.Addr().String(),
	)
	return s.app.Listener(listener)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
