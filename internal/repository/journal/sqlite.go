package journal

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"
)

// SQLiteJournal stores entries in a SQLite table.
type SQLiteJournal struct {
	db *sql.DB
}

// OpenSQLite opens the database at dsn and creates the journal table.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS alarm_journal (
			seq      INTEGER PRIMARY KEY AUTOINCREMENT,
			id       TEXT NOT NULL UNIQUE,
			at       INTEGER NOT NULL,
			type     TEXT NOT NULL,
			alarm_id INTEGER NOT NULL DEFAULT 0,
			key      TEXT NOT NULL DEFAULT '',
			message  TEXT NOT NULL DEFAULT '',
			origin   TEXT NOT NULL DEFAULT ''
		)
	`); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create alarm_journal table: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Append inserts entry.
func (j *SQLiteJournal) Append(ctx context.Context, entry Entry) error {
	if _, err := j.db.ExecContext(ctx, `
		INSERT INTO alarm_journal (id, at, type, alarm_id, key, message, origin)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID.String(),
		entry.At.UnixNano(),
		entry.Type,
		entry.AlarmID,
		entry.Key,
		entry.Message,
		entry.Origin,
	); err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}

	return nil
}

// List returns the most recent entries, oldest first.
func (j *SQLiteJournal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1 // SQLite reads a negative LIMIT as "no limit".
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, at, type, alarm_id, key, message, origin
		FROM alarm_journal
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var entries []Entry

	for rows.Next() {
		var (
			entry Entry
			id    string
			at    int64
		)

		if err := rows.Scan(&id, &at, &entry.Type, &entry.AlarmID, &entry.Key, &entry.Message, &entry.Origin); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}

		if entry.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse journal id: %w", err)
		}

		entry.At = time.Unix(0, at).UTC()
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}

	slices.Reverse(entries)

	return entries, nil
}

// Close closes the database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
