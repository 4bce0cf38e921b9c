// Package proxy provides the Lokallens chat proxy: it receives conversation
// turns from the website, attaches the fixed persona instruction, asks the
// configured generation provider for one reply and returns it in a
// Gemini-shaped envelope.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/lokallens/lokallens/pkg/llm"
	"github.com/lokallens/lokallens/pkg/llm/provider"
	"github.com/lokallens/lokallens/proxy/worker"
)

const (
	// ChatPath is the route the website posts conversations to.
	ChatPath = "/api/chat"

	// PingPath is the liveness route.
	PingPath = "/ping"
)

type requestIDKey struct{}

// Proxy is the chat proxy HTTP server.
type Proxy struct {
	config     Config
	generator  provider.Generator
	workerPool *worker.Pool
	logger     *slog.Logger
	server     *fiber.App

	// limit is the per-IP limiter shared by the chat route and mounted
	// handlers, nil when rate limiting is disabled.
	limit fiber.Handler
}

// New creates a new Proxy.
// The generator may be nil when no credential is configured; chat requests
// then fail with a configuration error. The worker pool is optional and
// records successful exchanges asynchronously.
func New(config Config, generator provider.Generator, pool *worker.Pool, logger *slog.Logger) *Proxy {
	if config.Model == "" {
		config.Model = llm.DefaultModel
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(llm.ErrorResponse{Error: err.Error()})
		},
	})

	p := &Proxy{
		config:     config,
		generator:  generator,
		workerPool: pool,
		logger:     logger,
		server:     app,
	}

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(compress.New())

	if len(config.AllowedOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(config.AllowedOrigins, ","),
			AllowMethods: strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions}, ","),
			AllowHeaders: fiber.HeaderContentType,
		}))
	}

	app.Get(PingPath, p.handlePing)

	if config.RateLimit > 0 {
		p.limit = limiter.New(limiter.Config{
			Max:        config.RateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(llm.ErrorResponse{Error: "too many requests"})
			},
		})
	}

	app.Post(ChatPath, p.limited(p.handleChat)...)

	return p
}

// Mount serves a net/http handler, such as the MCP endpoint, under path.
// Mounted handlers count against the same rate limit as the chat route.
func (p *Proxy) Mount(path string, h http.Handler) {
	p.server.All(path, p.limited(adaptor.HTTPHandler(h))...)
}

func (p *Proxy) limited(h fiber.Handler) []fiber.Handler {
	if p.limit == nil {
		return []fiber.Handler{h}
	}
	return []fiber.Handler{p.limit, h}
}

// App returns the underlying fiber app, for tests.
func (p *Proxy) App() *fiber.App {
	return p.server
}

// Run starts the proxy server on the given listening address
func (p *Proxy) Run() error {
	p.logger.Info("starting chat proxy",
		"listen", p.config.ListenAddr,
		"model", p.config.Model,
		"provider", p.providerName(),
	)

	return p.server.Listen(p.config.ListenAddr)
}

// RunWithListener starts the proxy server using the provided listener.
func (p *Proxy) RunWithListener(listener net.Listener) error {
	p.logger.Info("starting chat proxy",
		"listen", listener.Addr().String(),
		"model", p.config.Model,
		"provider", p.providerName(),
	)

	return p.server.Listener(listener)
}

// Close gracefully shuts down the proxy and waits for the worker pool to drain
func (p *Proxy) Close() error {
	err := p.server.Shutdown()
	if p.workerPool != nil {
		p.workerPool.Close()
	}
	return err
}

// Complete produces the reply for one conversation. It performs exactly one
// outbound generation call, or none when the credential is missing.
// Errors are *llm.ProxyError values.
func (p *Proxy) Complete(ctx context.Context, req *llm.ProxyRequest) (*llm.ProxyResponse, error) {
	if err := p.checkConfigured(); err != nil {
		return nil, err
	}

	var messages []llm.ConversationTurn
	if req != nil {
		messages = req.Messages
	}
	turns := provider.MapTurns(messages)

	if p.config.UpstreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.UpstreamTimeout)
		defer cancel()
	}

	startedAt := time.Now()
	text, err := p.generator.Generate(ctx, llm.SystemInstruction, turns, p.config.Model)
	if err != nil {
		return nil, llm.NewProxyError(llm.UpstreamError, err)
	}
	completedAt := time.Now()

	p.logger.Debug("generated reply",
		"provider", p.generator.Name(),
		"model", p.config.Model,
		"turns", len(turns),
		"duration", completedAt.Sub(startedAt),
	)

	if p.workerPool != nil {
		p.workerPool.Enqueue(worker.Job{
			RequestID:   requestIDFrom(ctx),
			Provider:    p.generator.Name(),
			Model:       p.config.Model,
			Turns:       messages,
			Reply:       text,
			StartedAt:   startedAt,
			CompletedAt: completedAt,
		})
	}

	return llm.NewTextResponse(text), nil
}

func (p *Proxy) checkConfigured() error {
	if p.config.APIKey == "" || p.generator == nil {
		return llm.NewProxyError(llm.ConfigurationError, llm.ErrMissingAPIKey)
	}
	return nil
}

func (p *Proxy) handlePing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleChat decodes a ProxyRequest and answers with a ProxyResponse.
// Every failure is answered with 500; only the kind decides the body shape.
func (p *Proxy) handleChat(c *fiber.Ctx) error {
	requestID := c.GetRespHeader(fiber.HeaderXRequestID)

	if err := p.checkConfigured(); err != nil {
		return p.writeError(c, requestID, err)
	}

	var req llm.ProxyRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return p.writeError(c, requestID, llm.NewProxyError(llm.RequestParseError, err))
	}

	p.logger.Debug("chat request",
		"request_id", requestID,
		"turns", len(req.Messages),
	)

	ctx := context.WithValue(c.UserContext(), requestIDKey{}, requestID)
	resp, err := p.Complete(ctx, &req)
	if err != nil {
		return p.writeError(c, requestID, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (p *Proxy) writeError(c *fiber.Ctx, requestID string, err error) error {
	kind := llm.KindOf(err)

	p.logger.Error("chat request failed",
		"request_id", requestID,
		"kind", kind.String(),
		"error", err,
	)

	if kind == llm.ConfigurationError {
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{
			Error: llm.MsgMissingAPIKey,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{
		Error:  llm.MsgGenericError,
		Detail: llm.Detail(err),
	})
}

func (p *Proxy) providerName() string {
	if p.generator == nil {
		return "none"
	}
	return p.generator.Name()
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
