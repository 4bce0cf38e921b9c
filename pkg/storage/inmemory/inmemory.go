// Package inmemory provides a map-backed storage.Driver, used in tests and
// when transcripts should not outlive the process.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/lokallens/lokallens/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	mu          sync.RWMutex
	transcripts map[string]*storage.Transcript
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		transcripts: make(map[string]*storage.Transcript),
	}
}

// Put stores a transcript. An existing ID is left untouched.
func (d *Driver) Put(_ context.Context, t *storage.Transcript) error {
	if t == nil {
		return storage.ErrNilTranscript
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.transcripts[t.ID]; ok {
		return nil
	}

	d.transcripts[t.ID] = t
	return nil
}

// Get retrieves a transcript by its ID.
func (d *Driver) Get(_ context.Context, id string) (*storage.Transcript, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, ok := d.transcripts[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	return t, nil
}

// List returns transcripts ordered by completion time, newest first.
func (d *Driver) List(_ context.Context, limit int) ([]*storage.Transcript, error) {
	d.mu.RLock()
	result := make([]*storage.Transcript, 0, len(d.transcripts))
	for _, t := range d.transcripts {
		result = append(result, t)
	}
	d.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CompletedAt.Equal(result[j].CompletedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CompletedAt.After(result[j].CompletedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
