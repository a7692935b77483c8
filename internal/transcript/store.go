// Package transcript provides a SQLite-backed transcript store for the
// medical chatbot. Each completed exchange is persisted as one row keyed by
// session ID, surviving server restarts for audit and review.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Entry is one persisted exchange.
type Entry struct {
	// SessionID identifies the conversation the exchange belongs to.
	SessionID string
	// UserInput is the user's message.
	UserInput string
	// BotResponse is the assistant's reply.
	BotResponse string
	// CreatedAt is when the exchange was persisted.
	CreatedAt time.Time
}

// Store persists and retrieves conversation transcripts keyed by session ID.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append persists a single exchange for the given session.
	Append(ctx context.Context, sessionID, userInput, botResponse string) error
	// Recent returns the most recent n exchanges for the session, ordered
	// oldest-first. If fewer than n exist, all are returned.
	Recent(ctx context.Context, sessionID string, n int) ([]Entry, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a Store backed by a local SQLite database.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the transcript database.
// It resolves to ~/.doctorai/transcripts.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("transcript: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".doctorai")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("transcript: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "transcripts.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("transcript: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS transcripts (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id   TEXT    NOT NULL,
    user_input   TEXT    NOT NULL,
    bot_response TEXT    NOT NULL,
    created_at   INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_transcripts_session_created
    ON transcripts (session_id, created_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("transcript: migrate: %w", err)
	}
	return nil
}

// Append persists a single exchange for the given session.
func (s *SQLiteStore) Append(ctx context.Context, sessionID, userInput, botResponse string) error {
	const q = `INSERT INTO transcripts (session_id, user_input, bot_response, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, sessionID, userInput, botResponse, time.Now().Unix()); err != nil {
		return fmt.Errorf("transcript: append: %w", err)
	}
	return nil
}

// Recent returns the most recent n exchanges for the session, ordered
// oldest-first. Uses a subquery to select the tail then re-order.
func (s *SQLiteStore) Recent(ctx context.Context, sessionID string, n int) ([]Entry, error) {
	const q = `
SELECT session_id, user_input, bot_response, created_at FROM (
    SELECT id, session_id, user_input, bot_response, created_at
    FROM   transcripts
    WHERE  session_id = ?
    ORDER  BY created_at DESC, id DESC
    LIMIT  ?
) ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, q, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("transcript: recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.SessionID, &e.UserInput, &e.BotResponse, &ts); err != nil {
			return nil, fmt.Errorf("transcript: recent scan: %w", err)
		}
		e.CreatedAt = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transcript: recent rows: %w", err)
	}
	return entries, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("transcript: close: %w", err)
	}
	return nil
}
