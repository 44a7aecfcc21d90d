// Package store provides the durable on-device entity store backing the
// offline learning cache and the sync queue. It owns five persisted
// collections (modules, quizzes, module progress, quiz attempts, sync queue)
// plus the last-sync timestamp scalar.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/errors"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/logging"
)

// Store wraps the sqlite database holding all persisted engine state.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database under dataDir.
// The database is opened with:
// - WAL mode for concurrent reads during writes
// - foreign key constraints enabled
// - a single writer connection (sqlite does not support multiple writers)
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to create data directory", err)
	}

	dbPath := filepath.Join(dataDir, "learnsync.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to open database", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to enable WAL mode", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to enable foreign keys", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate bootstraps the schema. Statements are idempotent so reopening an
// existing database is a no-op.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cached_modules (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		subject TEXT NOT NULL,
		content BLOB NOT NULL,
		version INTEGER NOT NULL CHECK(version > 0),
		last_updated INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS cached_quizzes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		subject TEXT NOT NULL,
		questions TEXT NOT NULL,
		version INTEGER NOT NULL CHECK(version > 0),
		last_updated INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS module_progress (
		module_id TEXT PRIMARY KEY,
		last_accessed INTEGER NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		time_spent INTEGER NOT NULL DEFAULT 0 CHECK(time_spent >= 0),
		visit_count INTEGER NOT NULL DEFAULT 1 CHECK(visit_count >= 1)
	);
	CREATE TABLE IF NOT EXISTS quiz_attempts (
		id TEXT PRIMARY KEY,
		quiz_id TEXT NOT NULL,
		attempted_at INTEGER NOT NULL,
		score INTEGER NOT NULL CHECK(score BETWEEN 0 AND 100),
		time_spent INTEGER NOT NULL,
		answers_correct INTEGER NOT NULL,
		total_questions INTEGER NOT NULL,
		breakdown TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_quiz_attempts_quiz_id ON quiz_attempts(quiz_id);
	CREATE TABLE IF NOT EXISTS sync_queue (
		id TEXT PRIMARY KEY,
		entry_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		sync_status TEXT NOT NULL,
		retry_count INTEGER NOT NULL DEFAULT 0 CHECK(retry_count >= 0),
		last_error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS engine_state (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);`

	if _, err := s.db.Exec(schema); err != nil {
		return apperrors.Wrap(apperrors.ErrMigration, "failed to bootstrap schema", err)
	}
	return nil
}

const lastSyncKey = "last_sync_at"

// LastSyncTime returns the persisted end time of the most recent drain pass,
// or the zero time when no pass has ever run.
func (s *Store) LastSyncTime() time.Time {
	var unix int64
	err := s.db.QueryRow(`SELECT value FROM engine_state WHERE key = ?`, lastSyncKey).Scan(&unix)
	if err == sql.ErrNoRows {
		return time.Time{}
	}
	if err != nil {
		logging.Error("failed to read last sync time", err, nil)
		return time.Time{}
	}
	return time.Unix(unix, 0)
}

// SetLastSyncTime persists the end time of a drain pass.
func (s *Store) SetLastSyncTime(t time.Time) error {
	query := `
	INSERT INTO engine_state (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := s.db.Exec(query, lastSyncKey, t.Unix()); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, "failed to persist last sync time", err)
	}
	return nil
}

// ClearAll wipes every collection and the engine state scalar. Used only on
// account logout or full reset.
func (s *Store) ClearAll() error {
	tables := []string{"cached_modules", "cached_quizzes", "module_progress", "quiz_attempts", "sync_queue", "engine_state"}
	for _, table := range tables {
		if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, "failed to clear "+table, err)
		}
	}
	logging.Info("storage cleared", nil)
	return nil
}
