package storage

import (
	"errors"
	"time"

	"github.com/lokallens/lokallens/pkg/llm"
)

// ErrNilTranscript is returned by drivers when asked to store a nil transcript.
var ErrNilTranscript = errors.New("cannot store nil transcript")

// Transcript is one recorded exchange of the chat proxy: the turns the
// website sent and the reply the provider produced for them.
type Transcript struct {
	ID          string                 `json:"id"`
	RequestID   string                 `json:"request_id,omitempty"`
	Provider    string                 `json:"provider"`
	Model       string                 `json:"model"`
	Turns       []llm.ConversationTurn `json:"turns"`
	Reply       string                 `json:"reply"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt time.Time              `json:"completed_at"`
}

// Duration is the time the provider took to answer.
func (t *Transcript) Duration() time.Duration {
	return t.CompletedAt.Sub(t.StartedAt)
}
