// Package db implements the SQLite store for accounts, tweets, and
// daily summaries.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/birdwatch.db.
// The baseDir parameter allows tests to use t.TempDir() instead of
// ~/.birdwatch.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	// Pragmas in the connection string apply to all pool connections.
	// WAL plus busy_timeout serializes concurrent writers at the
	// storage layer, so idempotent inserts from an overlapping run
	// cannot corrupt data.
	dbPath := filepath.Join(baseDir, "birdwatch.db")
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

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS accounts (
		  handle                TEXT PRIMARY KEY,
		  user_id               TEXT,
		  display_name          TEXT,
		  bio                   TEXT,
		  added_at              INTEGER NOT NULL,
		  consecutive_failures  INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS tweets (
		  id                   TEXT PRIMARY KEY,
		  author_handle        TEXT NOT NULL,
		  author_display_name  TEXT NOT NULL DEFAULT '',
		  content              TEXT NOT NULL,
		  created_at           INTEGER NOT NULL,
		  likes                INTEGER NOT NULL DEFAULT 0,
		  retweets             INTEGER NOT NULL DEFAULT 0,
		  replies              INTEGER NOT NULL DEFAULT 0,
		  views                INTEGER,
		  is_retweet           INTEGER NOT NULL DEFAULT 0,
		  is_reply             INTEGER NOT NULL DEFAULT 0,
		  media_json           TEXT,
		  url                  TEXT NOT NULL DEFAULT '',
		  fetched_at           INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tweets_author
		ON tweets(author_handle, created_at DESC);

		CREATE INDEX IF NOT EXISTS idx_tweets_created_at
		ON tweets(created_at DESC);

		CREATE TABLE IF NOT EXISTS summaries (
		  id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		  date                TEXT NOT NULL UNIQUE,
		  accounts_monitored  INTEGER NOT NULL DEFAULT 0,
		  total_tweets        INTEGER NOT NULL DEFAULT 0,
		  summary_text        TEXT NOT NULL DEFAULT '',
		  analysis            TEXT NOT NULL DEFAULT '',
		  insights_json       TEXT,
		  generated_at        INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_summaries_date ON summaries(date);
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

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
