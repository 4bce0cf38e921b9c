// Package entdriver implements storage.Driver on an ent SQL driver. The
// sqlite and postgres drivers embed it after opening their connection.
package entdriver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/lokallens/lokallens/pkg/llm"
	"github.com/lokallens/lokallens/pkg/storage"
	"github.com/lokallens/lokallens/pkg/storage/ent/migrate"
)

// EntDriver provides transcript storage over an ent SQL driver.
// It is database-agnostic; queries are rendered for the driver's dialect.
type EntDriver struct {
	Driver *entsql.Driver
}

// New wraps drv and runs the schema migration.
// On error the caller still owns drv.
func New(ctx context.Context, drv *entsql.Driver) (*EntDriver, error) {
	if err := migrate.Create(ctx, drv); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &EntDriver{Driver: drv}, nil
}

// DB exposes the underlying connection pool.
func (ed *EntDriver) DB() *sql.DB {
	return ed.Driver.DB()
}

// Put stores a transcript. An existing ID is left untouched.
func (ed *EntDriver) Put(ctx context.Context, t *storage.Transcript) error {
	if t == nil {
		return storage.ErrNilTranscript
	}

	query, args, err := insertQuery(ed.Driver.Dialect(), t)
	if err != nil {
		return err
	}

	if err := ed.Driver.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("failed to insert transcript %s: %w", t.ID, err)
	}
	return nil
}

// Get retrieves a transcript by its ID.
func (ed *EntDriver) Get(ctx context.Context, id string) (*storage.Transcript, error) {
	query, args := entsql.Dialect(ed.Driver.Dialect()).
		Select(migrate.Columns...).
		From(entsql.Table(migrate.TranscriptsTableName)).
		Where(entsql.EQ(migrate.FieldID, id)).
		Query()

	transcripts, err := ed.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript %s: %w", id, err)
	}
	if len(transcripts) == 0 {
		return nil, storage.NotFoundError{ID: id}
	}
	return transcripts[0], nil
}

// List returns transcripts ordered by completion time, newest first.
// A limit of zero or less returns every transcript.
func (ed *EntDriver) List(ctx context.Context, limit int) ([]*storage.Transcript, error) {
	query, args := listQuery(ed.Driver.Dialect(), limit)

	transcripts, err := ed.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	return transcripts, nil
}

// Close closes the underlying connection pool.
func (ed *EntDriver) Close() error {
	return ed.Driver.Close()
}

func (ed *EntDriver) query(ctx context.Context, query string, args []any) ([]*storage.Transcript, error) {
	var rows entsql.Rows
	if err := ed.Driver.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*storage.Transcript{}
	for rows.Next() {
		t, err := scanTranscript(&rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func insertQuery(dialect string, t *storage.Transcript) (string, []any, error) {
	turns, err := json.Marshal(t.Turns)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode turns: %w", err)
	}

	return entsql.Dialect(dialect).
		Insert(migrate.TranscriptsTableName).
		Columns(migrate.Columns...).
		Values(
			t.ID,
			t.RequestID,
			t.Provider,
			t.Model,
			string(turns),
			t.Reply,
			t.StartedAt.UnixNano(),
			t.CompletedAt.UnixNano(),
		).
		OnConflict(
			entsql.ConflictColumns(migrate.FieldID),
			entsql.DoNothing(),
		).
		QueryErr()
}

func listQuery(dialect string, limit int) (string, []any) {
	selector := entsql.Dialect(dialect).
		Select(migrate.Columns...).
		From(entsql.Table(migrate.TranscriptsTableName)).
		OrderBy(entsql.Desc(migrate.FieldCompletedAt), entsql.Desc(migrate.FieldID))
	if limit > 0 {
		selector.Limit(limit)
	}
	return selector.Query()
}

func scanTranscript(rows *entsql.Rows) (*storage.Transcript, error) {
	var (
		t                      storage.Transcript
		turns                  string
		startedAt, completedAt int64
	)

	if err := rows.Scan(&t.ID, &t.RequestID, &t.Provider, &t.Model, &turns, &t.Reply, &startedAt, &completedAt); err != nil {
		return nil, fmt.Errorf("failed to scan transcript: %w", err)
	}

	t.Turns = []llm.ConversationTurn{}
	if err := json.Unmarshal([]byte(turns), &t.Turns); err != nil {
		return nil, fmt.Errorf("failed to decode turns: %w", err)
	}
	t.StartedAt = time.Unix(0, startedAt).UTC()
	t.CompletedAt = time.Unix(0, completedAt).UTC()

	return &t, nil
}
