package provider

import (
	"fmt"
	"time"

	"github.com/lokallens/lokallens/pkg/llm/provider/gemini"
	"github.com/lokallens/lokallens/pkg/llm/provider/openai"
)

// Supported provider type constants
const (
	Gemini = "gemini"
	OpenAI = "openai"
)

// Options configures a Generator created with New.
type Options struct {
	// Type is the provider type (e.g., "gemini", "openai"). Defaults to "gemini".
	Type string

	// APIKey is the provider credential. Required.
	APIKey string

	// BaseURL optionally overrides the provider endpoint.
	BaseURL string

	// Timeout bounds a single Generate call. Zero means no timeout.
	Timeout time.Duration
}

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{Gemini, OpenAI}
}

// New creates a new Generator for the given provider type.
// Returns an error if the provider type is not recognized or the client
// cannot be constructed.
func New(opts Options) (Generator, error) {
	switch opts.Type {
	case Gemini, "":
		p, err := gemini.New(gemini.Config{
			APIKey:  opts.APIKey,
			BaseURL: opts.BaseURL,
			Timeout: opts.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case OpenAI:
		p, err := openai.New(openai.Config{
			APIKey:  opts.APIKey,
			BaseURL: opts.BaseURL,
			Timeout: opts.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", opts.Type, SupportedProviders())
	}
}
