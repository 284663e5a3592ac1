package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/workforce/backend/internal/domain/shared"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLite versions of the form tables. Column types differ from the postgres
// migrations only where SQLite needs it (DATETIME, TEXT for uuid and jsonb).
var formTestSchema = []string{
	`CREATE TABLE form_templates (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		status TEXT NOT NULL,
		is_signature_required BOOLEAN NOT NULL DEFAULT 0,
		is_approval_required BOOLEAN NOT NULL DEFAULT 0,
		created_by TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		version INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE form_groupings (
		id TEXT PRIMARY KEY,
		template_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE form_fields (
		id TEXT PRIMARY KEY,
		template_id TEXT NOT NULL,
		grouping_id TEXT NOT NULL,
		label TEXT NOT NULL,
		field_type TEXT NOT NULL,
		required BOOLEAN NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL,
		placeholder TEXT NOT NULL DEFAULT '',
		min_length INTEGER,
		max_length INTEGER,
		multiple BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE form_field_options (
		id TEXT PRIMARY KEY,
		template_id TEXT NOT NULL,
		field_id TEXT NOT NULL,
		value TEXT NOT NULL,
		sort_order INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE form_submissions (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		template_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		data TEXT NOT NULL DEFAULT '{}',
		status TEXT NOT NULL,
		submitted_at DATETIME,
		created_by TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		version INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE form_approvals (
		id TEXT PRIMARY KEY,
		submission_id TEXT NOT NULL,
		signed_by TEXT NOT NULL,
		decision TEXT NOT NULL,
		comment TEXT,
		signature TEXT,
		submitted_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (submission_id, signed_by)
	)`,
	`CREATE TABLE form_submission_status_history (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		submission_id TEXT NOT NULL,
		event_id TEXT NOT NULL UNIQUE,
		from_status TEXT NOT NULL DEFAULT '',
		to_status TEXT NOT NULL,
		changed_by TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		occurred_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	)`,
}

func setupFormTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection to ":memory:" is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range formTestSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

// capturingOutbox records events handed to the outbox
type capturingOutbox struct {
	events []shared.DomainEvent
	sawTx  bool
	err    error
}

func (c *capturingOutbox) SaveEvents(_ context.Context, tx any, events ...shared.DomainEvent) error {
	if c.err != nil {
		return c.err
	}
	_, c.sawTx = tx.(*gorm.DB)
	c.events = append(c.events, events...)
	return nil
}

func (c *capturingOutbox) eventTypes() []string {
	types := make([]string, len(c.events))
	for i, e := range c.events {
		types[i] = e.EventType()
	}
	return types
}
