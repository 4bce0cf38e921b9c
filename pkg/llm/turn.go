package llm

// Role identifies the speaker of a ConversationTurn.
// Callers may send any string; only "user" and "assistant" are recognized,
// everything else is kept verbatim as an Other role.
type Role struct {
	kind roleKind
	raw  string
}

type roleKind int

const (
	roleOther roleKind = iota
	roleUser
	roleAssistant
)

var (
	// RoleUser is a turn written by the person chatting.
	RoleUser = Role{kind: roleUser, raw: "user"}

	// RoleAssistant is a turn previously produced by the assistant.
	RoleAssistant = Role{kind: roleAssistant, raw: "assistant"}
)

// Provider-side roles. Gemini only distinguishes the user from the model.
const (
	ProviderRoleUser  = "user"
	ProviderRoleModel = "model"
)

// ParseRole tags a raw role string. Matching is exact, as sent by the website.
func ParseRole(raw string) Role {
	switch raw {
	case RoleUser.raw:
		return RoleUser
	case RoleAssistant.raw:
		return RoleAssistant
	default:
		return Role{kind: roleOther, raw: raw}
	}
}

// IsUser reports whether the role is the user role.
func (r Role) IsUser() bool { return r.kind == roleUser }

// IsAssistant reports whether the role is the assistant role.
func (r Role) IsAssistant() bool { return r.kind == roleAssistant }

// IsOther reports whether the role is neither user nor assistant.
func (r Role) IsOther() bool { return r.kind == roleOther }

// String returns the raw role value.
func (r Role) String() string { return r.raw }

// ProviderRole maps the role onto the provider's two-role vocabulary.
// Only the user role stays "user"; assistant and every other tag collapse to "model".
func (r Role) ProviderRole() string {
	if r.IsUser() {
		return ProviderRoleUser
	}
	return ProviderRoleModel
}

// ProviderTurn is a conversation turn in the provider's vocabulary.
// Role is either ProviderRoleUser or ProviderRoleModel.
type ProviderTurn struct {
	Role string
	Text string
}
