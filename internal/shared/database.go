package shared

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const (
	memoryPath         = ":memory:"
	defaultBusyTimeout = 5000
)

// NewDatabase opens a connection to a SQLite database at the specified path.
// The path can be ":memory:" for an in-memory database.
// Returns an open database connection or an error if connection fails.
func NewDatabase(path string) (*sql.DB, error) {
	return OpenDatabase(DatabaseConfig{Path: path, BusyTimeout: defaultBusyTimeout})
}

// OpenDatabase opens the database described by cfg and applies its pool settings.
//
// File databases use WAL journaling and a busy timeout so the CLI, TUI and dashboard server can share one file.
// Transactions begin with BEGIN IMMEDIATE: a read-modify-write takes the write lock before its first read.
// In-memory databases are pinned to a single connection because every new connection would see an empty database.
func OpenDatabase(cfg DatabaseConfig) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: database path is empty", ErrInvalidConfig)
	}

	db, err := sql.Open("sqlite3", dataSourceName(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Path == memoryPath {
		ConfigureDatabase(db, 1, 1)
	} else if cfg.MaxOpenConns > 0 {
		ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ConfigureDatabase sets connection pool settings for the database.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}

func dataSourceName(cfg DatabaseConfig) string {
	timeout := cfg.BusyTimeout
	if timeout <= 0 {
		timeout = defaultBusyTimeout
	}

	if cfg.Path == memoryPath {
		return fmt.Sprintf("file::memory:?_foreign_keys=on&_busy_timeout=%d&_txlock=immediate", timeout)
	}

	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d&_journal_mode=WAL&_txlock=immediate", cfg.Path, timeout)
}
