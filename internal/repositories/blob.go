package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/desertthunder/taskx/internal/progress"
)

// BlobRepository stores named JSON documents in the blobs table.
type BlobRepository struct {
	db *sql.DB
}

var _ progress.Store = (*BlobRepository)(nil)

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// NewBlobRepository creates a new [BlobRepository] with the given database connection
func NewBlobRepository(db *sql.DB) *BlobRepository {
	return &BlobRepository{db: db}
}

// Get returns the document stored under key. ok is false when no document exists.
func (r *BlobRepository) Get(key string) ([]byte, bool, error) {
	return getBlob(r.db, key)
}

// Update runs fn and upserts the documents it returns in one transaction.
//
// Databases opened through shared.OpenDatabase begin transactions with BEGIN IMMEDIATE,
// so the write lock is held from the first read: a second process waits on the busy
// timeout instead of reading a profile that is about to change.
func (r *BlobRepository) Update(fn progress.UpdateFunc) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	blobs, err := fn(func(key string) ([]byte, bool, error) {
		return getBlob(tx, key)
	})
	if err != nil {
		return err
	}

	query := `
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	now := time.Now()
	for _, key := range slices.Sorted(maps.Keys(blobs)) {
		if _, err := tx.Exec(query, key, string(blobs[key]), now); err != nil {
			return fmt.Errorf("failed to write blob %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit blobs: %w", err)
	}
	return nil
}

func getBlob(q querier, key string) ([]byte, bool, error) {
	var value string
	err := q.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query blob %s: %w", key, err)
	}
	return []byte(value), true, nil
}
