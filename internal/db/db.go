package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quillpad/quill/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/quill.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.quill.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Pragmas in the connection string apply to every pooled connection.
	dbPath := filepath.Join(baseDir, "quill.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
// Call after Init if you need to tune pool behavior for contention.
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS drafts (
		  id         TEXT PRIMARY KEY,
		  title      TEXT NOT NULL,
		  posts_json TEXT NOT NULL,
		  created_at INTEGER NOT NULL,
		  updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_drafts_updated
		ON drafts(updated_at DESC);

		CREATE TABLE IF NOT EXISTS queue_items (
		  id              TEXT PRIMARY KEY,
		  draft_id        TEXT,
		  title           TEXT NOT NULL,
		  posts_json      TEXT NOT NULL,
		  status          TEXT NOT NULL,
		  publish_at      INTEGER NOT NULL,
		  attempt_count   INTEGER NOT NULL DEFAULT 0,
		  max_attempts    INTEGER NOT NULL,
		  last_attempt_at INTEGER,
		  next_retry_at   INTEGER,
		  last_error      TEXT,
		  created_at      INTEGER NOT NULL,
		  updated_at      INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_queue_due
		ON queue_items(status, publish_at, next_retry_at);

		CREATE TABLE IF NOT EXISTS published_items (
		  id           TEXT PRIMARY KEY,
		  draft_id     TEXT,
		  title        TEXT NOT NULL,
		  posts_json   TEXT NOT NULL,
		  published_at INTEGER NOT NULL,
		  metrics_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_published_at
		ON published_items(published_at DESC);

		CREATE TABLE IF NOT EXISTS activity_log (
		  seq     INTEGER PRIMARY KEY AUTOINCREMENT,
		  id      TEXT NOT NULL,
		  at      INTEGER NOT NULL,
		  kind    TEXT NOT NULL,
		  level   TEXT NOT NULL,
		  item_id TEXT NOT NULL,
		  message TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS settings (
		  key   TEXT PRIMARY KEY,
		  value TEXT NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
