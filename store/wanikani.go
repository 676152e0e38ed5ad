package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// WanikaniKey returns the API key of a WaniKani source, or "" if none is set.
func (db *DB) WanikaniKey(ctx context.Context, account, source uuid.UUID) (string, error) {
	var key sql.NullString
	err := db.conn.QueryRowContext(ctx,
		`SELECT c.api_key FROM card_sources s
		 LEFT JOIN wanikani_credentials c ON c.source_id = s.id
		 WHERE s.id = ? AND s.account_id = ? AND s.type = 'wanikani'`,
		source, account).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: wanikani source %s", ErrNotFound, source)
	}
	if err != nil {
		return "", fmt.Errorf("get wanikani key: %w", err)
	}
	return key.String, nil
}

// WanikaniCache returns the cached provider data of a WaniKani source, or nil
// if nothing has been cached.
func (db *DB) WanikaniCache(ctx context.Context, account, source uuid.UUID) ([]byte, error) {
	var cache []byte
	err := db.conn.QueryRowContext(ctx,
		`SELECT c.cache FROM card_sources s
		 LEFT JOIN wanikani_credentials c ON c.source_id = s.id
		 WHERE s.id = ? AND s.account_id = ? AND s.type = 'wanikani'`,
		source, account).Scan(&cache)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: wanikani source %s", ErrNotFound, source)
	}
	if err != nil {
		return nil, fmt.Errorf("get wanikani cache: %w", err)
	}
	return cache, nil
}

// SaveWanikaniCache replaces the cached provider data of a WaniKani source.
func (db *DB) SaveWanikaniCache(ctx context.Context, account, source uuid.UUID, data []byte) error {
	return db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := ownsWanikani(ctx, tx, account, source); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO wanikani_credentials (source_id, cache, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT (source_id) DO UPDATE SET cache = excluded.cache, updated_at = excluded.updated_at`,
			source, data, now())
		if err != nil {
			return fmt.Errorf("save wanikani cache: %w", err)
		}
		return nil
	})
}

// setWanikaniKey stores a source's key. A changed key belongs to another
// WaniKani account, so the cache is dropped with it.
func setWanikaniKey(ctx context.Context, tx *sql.Tx, source uuid.UUID, key string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO wanikani_credentials (source_id, api_key, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (source_id) DO UPDATE SET
		     cache = CASE WHEN api_key = excluded.api_key THEN cache ELSE NULL END,
		     api_key = excluded.api_key,
		     updated_at = excluded.updated_at`,
		source, key, now())
	if err != nil {
		return fmt.Errorf("set wanikani key: %w", err)
	}
	return nil
}

func ownsWanikani(ctx context.Context, tx *sql.Tx, account, source uuid.UUID) error {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM card_sources WHERE id = ? AND account_id = ? AND type = 'wanikani'`,
		source, account).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: wanikani source %s", ErrNotFound, source)
	}
	if err != nil {
		return fmt.Errorf("get wanikani source: %w", err)
	}
	return nil
}
