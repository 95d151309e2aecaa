/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/tokenregistry/storagemodels"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS transfer_events (
	sequence   INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id   TEXT NOT NULL UNIQUE,
	collection TEXT NOT NULL,
	kind       TEXT NOT NULL,
	from_addr  TEXT NOT NULL,
	to_addr    TEXT NOT NULL,
	token_id   INTEGER NOT NULL,
	extension  INTEGER NOT NULL,
	at         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transfer_events_token ON transfer_events(token_id);
`

// SQLiteStore persists the event log in a SQLite database. The sequence
// column provides the store-assigned ordering.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the event log database at path.
// Use ":memory:" for an ephemeral log.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open event log %s: %w", path, err)
	}

	// modernc.org/sqlite serializes access through a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize event log schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append records an event and returns its sequence number.
func (s *SQLiteStore) Append(ctx context.Context, event *storagemodels.TransferEvent) (uint64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transfer_events (event_id, collection, kind, from_addr, to_addr, token_id, extension, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Collection, string(event.Kind), event.From, event.To,
		int64(event.TokenID), event.Extension, time.Time(event.At).UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("append event %s: %w", event.ID, err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read event sequence: %w", err)
	}
	return uint64(seq), nil
}

// Read returns events with sequence numbers greater than after, in order.
func (s *SQLiteStore) Read(ctx context.Context, after uint64, limit int) ([]*storagemodels.TransferEvent, error) {
	query := `SELECT event_id, collection, kind, from_addr, to_addr, token_id, extension, at
		 FROM transfer_events WHERE sequence > ? ORDER BY sequence`
	args := []any{int64(after)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}
	defer rows.Close()

	var events []*storagemodels.TransferEvent
	for rows.Next() {
		var (
			ev      storagemodels.TransferEvent
			kind    string
			tokenID int64
			at      string
		)
		if err := rows.Scan(&ev.ID, &ev.Collection, &kind, &ev.From, &ev.To, &tokenID, &ev.Extension, &at); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		ev.Kind = storagemodels.EventKind(kind)
		ev.TokenID = uint64(tokenID)

		ts, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parse event timestamp %q: %w", at, err)
		}
		ev.At = strfmt.DateTime(ts)

		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}
	return events, nil
}

// Len returns the number of recorded events.
func (s *SQLiteStore) Len(ctx context.Context) (uint64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transfer_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return uint64(n), nil
}
