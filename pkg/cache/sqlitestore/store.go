// Package sqlitestore implements cache.FeedStore on an embedded SQLite file.
//
// The snapshot header (a single row) and its items live in two tables.
// Delete, insert and retrieve each run in one transaction, so a reader never
// sees a header without its items.
package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sternrassler/essential-feed/pkg/cache"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// ErrInvalidRow indicates a stored item could not be decoded.
var ErrInvalidRow = errors.New("invalid cache row")

// Store persists the feed snapshot in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps delete-then-insert sequences from interleaving
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// DeleteCachedFeed removes the header and all items.
func (s *Store) DeleteCachedFeed(ctx context.Context) error {
	return s.inTx(ctx, "sqlite delete", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM feed_items`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM feed_cache`)
		return err
	})
}

// Insert writes a snapshot. It does not clear existing rows; inserting over
// a non-empty store fails on the primary keys and leaves it unchanged.
func (s *Store) Insert(ctx context.Context, items []cache.LocalFeedItem, timestamp time.Time) error {
	return s.inTx(ctx, "sqlite insert", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO feed_cache (id, timestamp_ns) VALUES (1, ?)`,
			timestamp.UnixNano(),
		); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO feed_items (position, id, description, location, image_url) VALUES (?, ?, ?, ?, ?)`,
		)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, item := range items {
			if _, err := stmt.ExecContext(ctx,
				i,
				item.ID.String(),
				nullString(item.Description),
				nullString(item.Location),
				item.ImageURL.String(),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// Retrieve reads the snapshot. No header row means an empty store. The
// header and items are read in one transaction so both come from the same
// committed snapshot.
func (s *Store) Retrieve(ctx context.Context) (cache.CachedFeed, bool, error) {
	if s == nil || s.sqlDB == nil {
		return cache.CachedFeed{}, false, fmt.Errorf("storage is not configured")
	}
	tx, err := s.sqlDB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return cache.CachedFeed{}, false, fmt.Errorf("sqlite retrieve: begin: %w", err)
	}
	defer tx.Rollback()

	var timestampNs int64
	err = tx.QueryRowContext(ctx, `SELECT timestamp_ns FROM feed_cache WHERE id = 1`).Scan(&timestampNs)
	if errors.Is(err, sql.ErrNoRows) {
		return cache.CachedFeed{}, false, nil
	}
	if err != nil {
		return cache.CachedFeed{}, false, fmt.Errorf("sqlite retrieve: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, description, location, image_url FROM feed_items ORDER BY position`,
	)
	if err != nil {
		return cache.CachedFeed{}, false, fmt.Errorf("sqlite retrieve: %w", err)
	}
	defer rows.Close()

	items := make([]cache.LocalFeedItem, 0)
	for rows.Next() {
		var (
			id, imageURL          string
			description, location sql.NullString
		)
		if err := rows.Scan(&id, &description, &location, &imageURL); err != nil {
			return cache.CachedFeed{}, false, fmt.Errorf("sqlite retrieve: %w", err)
		}
		item, err := decodeItem(id, description, location, imageURL)
		if err != nil {
			return cache.CachedFeed{}, false, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return cache.CachedFeed{}, false, fmt.Errorf("sqlite retrieve: %w", err)
	}

	return cache.CachedFeed{
		Feed:      items,
		Timestamp: time.Unix(0, timestampNs).UTC(),
	}, true, nil
}

func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func decodeItem(id string, description, location sql.NullString, imageURL string) (cache.LocalFeedItem, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return cache.LocalFeedItem{}, fmt.Errorf("%w: id %q: %v", ErrInvalidRow, id, err)
	}
	u, err := url.Parse(imageURL)
	if err != nil {
		return cache.LocalFeedItem{}, fmt.Errorf("%w: image url %q: %v", ErrInvalidRow, imageURL, err)
	}
	return cache.LocalFeedItem{
		ID:          parsedID,
		Description: stringPtr(description),
		Location:    stringPtr(location),
		ImageURL:    *u,
	}, nil
}
