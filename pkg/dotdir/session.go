package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lokallens/lokallens/pkg/llm"
)

const (
	sessionFile = "session.json"
)

// ChatSession is the conversation the chat client resumes on its next start.
type ChatSession struct {
	// Messages is the conversation history in chronological order.
	Messages []llm.ConversationTurn `json:"messages"`

	// UpdatedAt is when the session was last saved.
	UpdatedAt time.Time `json:"updated_at"`
}

// LoadSession loads the saved chat session from a target .lokallens/session.json.
// Returns nil, nil if no session has been saved.
// If overrideDir is non-empty, it is used instead of the default location.
func (m *Manager) LoadSession(overrideDir string) (*ChatSession, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, sessionFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading chat session: %w", err)
	}

	session := &ChatSession{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("parsing chat session: %w", err)
	}

	return session, nil
}

// SaveSession persists the chat session to a target .lokallens/session.json.
func (m *Manager) SaveSession(session *ChatSession, overrideDir string) error {
	if session == nil {
		return errors.New("cannot save nil chat session")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling chat session: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, sessionFile), data, 0o600); err != nil {
		return fmt.Errorf("writing chat session: %w", err)
	}

	return nil
}

// ClearSession removes the saved chat session so the next chat starts fresh.
// Returns nil if no session exists.
func (m *Manager) ClearSession(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, sessionFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing chat session: %w", err)
	}

	return nil
}
