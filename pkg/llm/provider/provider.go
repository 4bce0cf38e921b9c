// Package provider defines the generation capability the chat proxy depends on
// and maps website conversation turns into the provider's turn shape.
package provider

import (
	"context"

	"github.com/lokallens/lokallens/pkg/llm"
)

// Generator produces a single reply for a conversation.
// Implementations perform exactly one blocking call to the remote service per
// Generate and must be safe for concurrent use.
type Generator interface {
	// Name returns the canonical provider name (e.g., "gemini", "openai")
	Name() string

	// Generate sends the system instruction and turns to the given model and
	// returns the first text fragment of the first candidate.
	Generate(ctx context.Context, systemInstruction string, turns []llm.ProviderTurn, modelID string) (string, error)
}

// MapTurns converts website turns into provider turns, preserving order.
// Only "user" keeps the user role; every other role becomes the model role.
func MapTurns(turns []llm.ConversationTurn) []llm.ProviderTurn {
	mapped := make([]llm.ProviderTurn, 0, len(turns))
	for _, t := range turns {
		mapped = append(mapped, llm.ProviderTurn{
			Role: t.ParsedRole().ProviderRole(),
			Text: t.Content,
		})
	}
	return mapped
}
