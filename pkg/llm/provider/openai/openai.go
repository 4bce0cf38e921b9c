// Package openai implements the provider.Generator capability against any
// OpenAI-compatible chat completions endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/lokallens/lokallens/pkg/llm"
)

const (
	providerName   = "openai"
	defaultBaseURL = "https://api.openai.com/v1"
)

// ErrNoChoices is returned when the completion carries no choices.
var ErrNoChoices = errors.New("openai returned no choices")

// Config is the OpenAI provider configuration.
type Config struct {
	APIKey  string
	BaseURL string

	// Timeout bounds each request. Zero disables the bound.
	Timeout time.Duration
}

// Provider implements provider.Generator using the OpenAI SDK.
type Provider struct {
	client openai.Client
}

// New creates an OpenAI provider. SDK retries are disabled: every Generate is
// exactly one outbound request.
func New(c Config) (*Provider, error) {
	apiKey := strings.TrimSpace(c.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: c.Timeout}),
		option.WithMaxRetries(0),
	)

	return &Provider{client: client}, nil
}

// Name returns "openai".
func (p *Provider) Name() string {
	return providerName
}

// Generate sends one chat completion and returns the first choice's content.
func (p *Provider) Generate(ctx context.Context, systemInstruction string, turns []llm.ProviderTurn, modelID string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelID),
		Messages: buildMessages(systemInstruction, turns),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(systemInstruction string, turns []llm.ProviderTurn) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	messages = append(messages, openai.SystemMessage(systemInstruction))
	for _, t := range turns {
		if t.Role == llm.ProviderRoleUser {
			messages = append(messages, openai.UserMessage(t.Text))
			continue
		}
		messages = append(messages, openai.AssistantMessage(t.Text))
	}
	return messages
}
