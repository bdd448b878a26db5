// Package sqlite provides SQLite-based storage implementation.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/arnavsh/promptgate/internal/storage/encryption"
	_ "modernc.org/sqlite"
)

// Storage implements the storage.Storage interface using SQLite
type Storage struct {
	db        *sql.DB
	encryptor *encryption.AES
	mu        sync.RWMutex
	closed    bool
}

// New creates a new SQLite storage instance
func New(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	enc, err := encryption.New()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	storage := &Storage{
		db:        db,
		encryptor: enc,
	}

	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return storage, nil
}

// createSchema creates the database schema
func (s *Storage) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS providers (
		id          TEXT PRIMARY KEY,
		label       TEXT NOT NULL,
		kind        TEXT NOT NULL,
		base_url    TEXT NOT NULL,
		model       TEXT NOT NULL,
		api_key     TEXT NOT NULL,
		enabled     INTEGER DEFAULT 1,
		position    INTEGER DEFAULT 0,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS site_content (
		key         TEXT NOT NULL,
		language    TEXT NOT NULL DEFAULT 'en',
		body        TEXT NOT NULL,
		position    INTEGER DEFAULT 0,
		updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (key, language)
	);

	CREATE TABLE IF NOT EXISTS request_logs (
		id               TEXT PRIMARY KEY,
		request_id       TEXT NOT NULL,
		mode             TEXT NOT NULL,
		provider         TEXT,
		model            TEXT,
		prompt_tokens    INTEGER DEFAULT 0,
		completion_chars INTEGER DEFAULT 0,
		is_streaming     INTEGER DEFAULT 0,
		status_code      INTEGER,
		error_message    TEXT,
		duration_ms      INTEGER,
		created_at       DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_providers_position ON providers(position);
	CREATE INDEX IF NOT EXISTS idx_request_logs_created ON request_logs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// checkOpen returns an error if the storage has been closed.
// Caller must hold at least a read lock.
func (s *Storage) checkOpen() error {
	if s.closed {
		return ErrStorageClosed
	}
	return nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
