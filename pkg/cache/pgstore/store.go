// Package pgstore implements cache.FeedStore on PostgreSQL through lib/pq.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Sternrassler/essential-feed/pkg/cache"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrInvalidRow indicates a stored item could not be decoded.
var ErrInvalidRow = errors.New("invalid cache row")

// Store persists the feed snapshot in two Postgres tables.
type Store struct {
	db *sql.DB
}

// Open connects to dsn with pool settings suitable for a single-snapshot cache.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// New wraps an open database. Call Ensure before first use.
func New(db *sql.DB) *Store {
	if db == nil {
		panic("db cannot be nil")
	}
	return &Store{db: db}
}

// Ensure creates the tables if they do not exist.
func (s *Store) Ensure(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS feed_cache (
    id SMALLINT PRIMARY KEY CHECK (id = 1),
    timestamp TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS feed_items (
    position INTEGER PRIMARY KEY,
    id UUID NOT NULL,
    description TEXT,
    location TEXT,
    image_url TEXT NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("postgres ensure: %w", err)
	}
	return nil
}

// DeleteCachedFeed removes the header and all items.
func (s *Store) DeleteCachedFeed(ctx context.Context) error {
	return s.inTx(ctx, "postgres delete", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM feed_items`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM feed_cache`)
		return err
	})
}

// Insert writes a snapshot with a single COPY for the items. Existing rows
// are not cleared; a second insert fails on the primary keys.
func (s *Store) Insert(ctx context.Context, items []cache.LocalFeedItem, timestamp time.Time) error {
	return s.inTx(ctx, "postgres insert", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO feed_cache (id, timestamp) VALUES (1, $1)`,
			timestamp.UTC(),
		); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("feed_items", "position", "id", "description", "location", "image_url"))
		if err != nil {
			return err
		}
		for i, item := range items {
			if _, err := stmt.ExecContext(ctx,
				i,
				item.ID.String(),
				nullString(item.Description),
				nullString(item.Location),
				item.ImageURL.String(),
			); err != nil {
				_ = stmt.Close()
				return err
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			_ = stmt.Close()
			return err
		}
		return stmt.Close()
	})
}

// snapshotRead makes both Retrieve queries see one snapshot. Under the
// default READ COMMITTED each statement would see its own.
var snapshotRead = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// Retrieve reads the snapshot. No header row means an empty store.
func (s *Store) Retrieve(ctx context.Context) (cache.CachedFeed, bool, error) {
	tx, err := s.db.BeginTx(ctx, snapshotRead)
	if err != nil {
		return cache.CachedFeed{}, false, fmt.Errorf("postgres retrieve: begin: %w", err)
	}
	defer tx.Rollback()

	var timestamp time.Time
	err = tx.QueryRowContext(ctx, `SELECT timestamp FROM feed_cache WHERE id = 1`).Scan(&timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return cache.CachedFeed{}, false, nil
	}
	if err != nil {
		return cache.CachedFeed{}, false, fmt.Errorf("postgres retrieve: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, description, location, image_url FROM feed_items ORDER BY position`,
	)
	if err != nil {
		return cache.CachedFeed{}, false, fmt.Errorf("postgres retrieve: %w", err)
	}
	defer rows.Close()

	items := make([]cache.LocalFeedItem, 0)
	for rows.Next() {
		var (
			id, imageURL          string
			description, location sql.NullString
		)
		if err := rows.Scan(&id, &description, &location, &imageURL); err != nil {
			return cache.CachedFeed{}, false, fmt.Errorf("postgres retrieve: %w", err)
		}
		parsedID, err := uuid.Parse(id)
		if err != nil {
			return cache.CachedFeed{}, false, fmt.Errorf("%w: id %q: %v", ErrInvalidRow, id, err)
		}
		u, err := url.Parse(imageURL)
		if err != nil {
			return cache.CachedFeed{}, false, fmt.Errorf("%w: image url %q: %v", ErrInvalidRow, imageURL, err)
		}
		items = append(items, cache.LocalFeedItem{
			ID:          parsedID,
			Description: stringPtr(description),
			Location:    stringPtr(location),
			ImageURL:    *u,
		})
	}
	if err := rows.Err(); err != nil {
		return cache.CachedFeed{}, false, fmt.Errorf("postgres retrieve: %w", err)
	}

	return cache.CachedFeed{Feed: items, Timestamp: timestamp.UTC()}, true, nil
}

func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("%s: %s: %w", op, pqErr.Code.Name(), err)
		}
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
	v := ns.String
	return &v
}
