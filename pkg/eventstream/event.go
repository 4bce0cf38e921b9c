package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/lokallens/lokallens/pkg/storage"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTranscriptRecorded is emitted after a chat exchange is persisted.
	EventTypeTranscriptRecorded = "lokallens.transcript.recorded"
)

// TranscriptRecordedEvent is a transport-neutral event payload for a
// persisted chat exchange.
type TranscriptRecordedEvent struct {
	SchemaVersion int                `json:"schema_version"`
	EventType     string             `json:"event_type"`
	EventID       string             `json:"event_id"`
	EmittedAt     time.Time          `json:"emitted_at"`
	RequestMeta   RequestMeta        `json:"request_meta"`
	Transcript    storage.Transcript `json:"transcript"`
}

// RequestMeta captures request lifecycle metadata for the event.
type RequestMeta struct {
	RequestID   string    `json:"request_id,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
}

// NewTranscriptRecordedEvent wraps t in a versioned event with a fresh ID.
func NewTranscriptRecordedEvent(t *storage.Transcript, now time.Time) *TranscriptRecordedEvent {
	return &TranscriptRecordedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTranscriptRecorded,
		EventID:       uuid.NewString(),
		EmittedAt:     now.UTC(),
		RequestMeta: RequestMeta{
			RequestID:   t.RequestID,
			StartedAt:   t.StartedAt,
			CompletedAt: t.CompletedAt,
			DurationMs:  t.Duration().Milliseconds(),
		},
		Transcript: *t,
	}
}
