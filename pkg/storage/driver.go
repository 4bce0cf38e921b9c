// Package storage defines how recorded chat transcripts are persisted.
package storage

import "context"

// Driver defines the interface for persisting and retrieving transcripts in a
// storage backend.
type Driver interface {
	// Put stores a transcript. Storing an ID twice overwrites nothing and
	// is not an error.
	Put(ctx context.Context, t *Transcript) error

	// Get retrieves a transcript by its ID.
	// Returns NotFoundError when no transcript has that ID.
	Get(ctx context.Context, id string) (*Transcript, error)

	// List returns at most limit transcripts, newest first.
	// A limit <= 0 returns every transcript.
	List(ctx context.Context, limit int) ([]*Transcript, error)

	// Close closes the store and releases any resources.
	Close() error
}
