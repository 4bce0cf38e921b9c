// Package gemini implements the provider.Generator capability on top of the
// Google Gen AI SDK (Gemini API backend).
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/lokallens/lokallens/pkg/llm"
)

const providerName = "gemini"

// ErrEmptyResponse is returned when the service answers without any candidate parts.
var ErrEmptyResponse = errors.New("gemini returned no candidate parts")

// modelsClient is the subset of *genai.Models used by the provider.
type modelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

// Config is the Gemini provider configuration.
type Config struct {
	// APIKey is the Gemini API key.
	APIKey string

	// BaseURL optionally overrides the Gemini API endpoint.
	BaseURL string

	// Timeout bounds each GenerateContent call. Zero disables the bound.
	Timeout time.Duration
}

// Provider implements provider.Generator using Gemini.
type Provider struct {
	models  modelsClient
	timeout time.Duration
}

// New creates a Gemini provider. The SDK client is created once and shared by
// all requests.
func New(c Config) (*Provider, error) {
	apiKey := strings.TrimSpace(c.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(c.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}

	client, err := newClient(context.Background(), clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Provider{
		models:  client.Models,
		timeout: c.Timeout,
	}, nil
}

// Name returns "gemini".
func (p *Provider) Name() string {
	return providerName
}

// Generate sends one GenerateContent request and returns the first text part
// of the first candidate.
func (p *Provider) Generate(ctx context.Context, systemInstruction string, turns []llm.ProviderTurn, modelID string) (string, error) {
	callCtx, cancel := p.withTimeout(ctx)
	defer cancel()

	resp, err := p.models.GenerateContent(callCtx, modelID, buildContents(turns), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	})
	if err != nil {
		return "", err
	}

	text, ok := firstText(resp)
	if !ok {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func buildContents(turns []llm.ProviderTurn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		content := &genai.Content{
			Role:  genai.RoleModel,
			Parts: []*genai.Part{{Text: t.Text}},
		}
		if t.Role == llm.ProviderRoleUser {
			content.Role = genai.RoleUser
		}
		contents = append(contents, content)
	}
	return contents
}

// firstText returns the text of the first non-thought part of the first
// candidate, which may be empty. ok is false when the response carries no
// candidate parts at all.
func firstText(resp *genai.GenerateContentResponse) (text string, ok bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", false
	}

	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", false
	}

	for _, part := range content.Parts {
		if part == nil || part.Thought {
			continue
		}
		return part.Text, true
	}
	return "", true
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}
