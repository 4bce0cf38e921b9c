// Package migrate declares the transcript tables and applies them with ent's
// schema migration.
package migrate

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// TranscriptsTableName is the table holding recorded chat exchanges.
const TranscriptsTableName = "transcripts"

// Column names of the transcripts table.
const (
	FieldID          = "id"
	FieldRequestID   = "request_id"
	FieldProvider    = "provider"
	FieldModel       = "model"
	FieldTurns       = "turns"
	FieldReply       = "reply"
	FieldStartedAt   = "started_at"
	FieldCompletedAt = "completed_at"
)

// Columns lists the transcripts columns in select order.
var Columns = []string{
	FieldID,
	FieldRequestID,
	FieldProvider,
	FieldModel,
	FieldTurns,
	FieldReply,
	FieldStartedAt,
	FieldCompletedAt,
}

var (
	// TranscriptsColumns holds the columns for the "transcripts" table.
	TranscriptsColumns = []*schema.Column{
		{Name: FieldID, Type: field.TypeString},
		{Name: FieldRequestID, Type: field.TypeString, Default: ""},
		{Name: FieldProvider, Type: field.TypeString},
		{Name: FieldModel, Type: field.TypeString},
		{Name: FieldTurns, Type: field.TypeString, Size: 2147483647},
		{Name: FieldReply, Type: field.TypeString, Size: 2147483647},
		{Name: FieldStartedAt, Type: field.TypeInt64},
		{Name: FieldCompletedAt, Type: field.TypeInt64},
	}
	// TranscriptsTable holds the schema information for the "transcripts" table.
	TranscriptsTable = &schema.Table{
		Name:       TranscriptsTableName,
		Columns:    TranscriptsColumns,
		PrimaryKey: []*schema.Column{TranscriptsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "transcript_completed_at",
				Unique:  false,
				Columns: []*schema.Column{TranscriptsColumns[7]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		TranscriptsTable,
	}
)

// Create runs the append-only auto-migration for Tables on drv.
func Create(ctx context.Context, drv dialect.Driver, opts ...schema.MigrateOption) error {
	migrate, err := schema.NewMigrate(drv, opts...)
	if err != nil {
		return fmt.Errorf("ent/migrate: %w", err)
	}
	return migrate.Create(ctx, Tables...)
}
