// Package llm provides the wire types exchanged with the Lokallens website
// and the provider-agnostic error kinds of the chat proxy.
package llm

// ConversationTurn represents one message in the chat exchange sent by the website.
type ConversationTurn struct {
	Role    string `json:"role"`    // "user", "assistant", or any other tag
	Content string `json:"content"` // Free text content
}

// ParsedRole returns the tagged role of the turn.
func (t ConversationTurn) ParsedRole() Role {
	return ParseRole(t.Role)
}

// ProxyRequest is the body accepted by the chat endpoint.
type ProxyRequest struct {
	// Messages in conversation order. A missing or null array is treated as empty.
	Messages []ConversationTurn `json:"messages"`
}

// NewUserTurn creates a user turn with the given content.
func NewUserTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleUser.String(), Content: content}
}

// NewAssistantTurn creates an assistant turn with the given content.
func NewAssistantTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleAssistant.String(), Content: content}
}
