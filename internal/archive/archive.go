// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive keeps a local SQLite archive of result entries.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/keywordschat/kwc-tui/internal/results"
)

// ErrEntryNotFound is returned when an archived entry doesn't exist.
var ErrEntryNotFound = errors.New("archived entry not found")

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_id        TEXT NOT NULL,
	conversation_id TEXT NOT NULL,
	title           TEXT NOT NULL,
	kind            TEXT NOT NULL,
	source_url      TEXT NOT NULL DEFAULT '',
	row_count       INTEGER NOT NULL DEFAULT 0,
	payload         TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_title ON entries(title);
CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at);
`

// payload is the JSON blob stored per entry (rows or tabs, never both).
type payload struct {
	Rows     []results.Record            `json:"rows,omitempty"`
	Tabs     map[string][]results.Record `json:"tabs,omitempty"`
	Metadata map[string]any              `json:"metadata,omitempty"`
}

// =============================================================================
// ARCHIVE
// =============================================================================

// ArchivedEntry is listing metadata for an archived result.
type ArchivedEntry struct {
	ID             int64
	EntryID        string
	ConversationID string
	Title          string
	Kind           string
	SourceURL      string
	RowCount       int
	CreatedAt      time.Time
}

// Archive is a SQLite-backed store of result entries.
type Archive struct {
	db *sql.DB
	mu sync.Mutex

	// MaxEntries caps the archive size (0 = unlimited). Oldest entries
	// are pruned after each save.
	MaxEntries int
}

// Open opens (or creates) the archive database at the given path.
func Open(dbPath string, maxEntries int) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Archive{db: db, MaxEntries: maxEntries}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// =============================================================================
// SAVE
// =============================================================================

// SaveEntry archives a result entry under the conversation that produced it.
func (a *Archive) SaveEntry(ctx context.Context, conversationID string, entry *results.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	blob, err := json.Marshal(payload{
		Rows:     entry.Rows,
		Tabs:     entry.Tabs,
		Metadata: entry.Metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = a.db.ExecContext(ctx,
		`INSERT INTO entries (entry_id, conversation_id, title, kind, source_url, row_count, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, conversationID, entry.Title, string(entry.Kind),
		entry.SourceURL, entry.RowCount(), string(blob), createdAt)
	if err != nil {
		return fmt.Errorf("failed to archive entry: %w", err)
	}

	if a.MaxEntries > 0 {
		return a.prune(ctx)
	}
	return nil
}

// prune deletes the oldest entries beyond MaxEntries. Caller holds the lock.
func (a *Archive) prune(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx,
		`DELETE FROM entries WHERE id NOT IN (
			SELECT id FROM entries ORDER BY id DESC LIMIT ?
		)`, a.MaxEntries)
	if err != nil {
		return fmt.Errorf("failed to prune archive: %w", err)
	}
	return nil
}

// =============================================================================
// QUERY
// =============================================================================

// Recent returns the newest archived entries, most recent first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]ArchivedEntry, error) {
	return a.query(ctx,
		`SELECT id, entry_id, conversation_id, title, kind, source_url, row_count, created_at
		 FROM entries ORDER BY id DESC LIMIT ?`, limit)
}

// Search returns archived entries whose title matches the query
// (case-insensitive substring), most recent first.
func (a *Archive) Search(ctx context.Context, query string, limit int) ([]ArchivedEntry, error) {
	return a.query(ctx,
		`SELECT id, entry_id, conversation_id, title, kind, source_url, row_count, created_at
		 FROM entries WHERE title LIKE ? COLLATE NOCASE ORDER BY id DESC LIMIT ?`,
		"%"+query+"%", limit)
}

func (a *Archive) query(ctx context.Context, q string, args ...any) ([]ArchivedEntry, error) {
	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("archive query failed: %w", err)
	}
	defer rows.Close()

	var entries []ArchivedEntry
	for rows.Next() {
		var e ArchivedEntry
		if err := rows.Scan(&e.ID, &e.EntryID, &e.ConversationID, &e.Title,
			&e.Kind, &e.SourceURL, &e.RowCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan archived entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LoadEntry rebuilds a full result entry from the archive, suitable for
// replaying into the results panel.
func (a *Archive) LoadEntry(ctx context.Context, id int64) (*results.Entry, error) {
	var (
		entry results.Entry
		kind  string
		blob  string
	)
	err := a.db.QueryRowContext(ctx,
		`SELECT entry_id, title, kind, source_url, payload, created_at
		 FROM entries WHERE id = ?`, id).
		Scan(&entry.ID, &entry.Title, &kind, &entry.SourceURL, &blob, &entry.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load archived entry: %w", err)
	}

	var p payload
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return nil, fmt.Errorf("failed to decode archived entry: %w", err)
	}
	entry.Kind = results.Kind(kind)
	entry.Rows = p.Rows
	entry.Tabs = p.Tabs
	entry.Metadata = p.Metadata
	return &entry, nil
}

// Count returns the number of archived entries.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n)
	return n, err
}
