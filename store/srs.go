package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sky-flux/flashcards"
)

// SrsSystem returns the SRS system with the given id.
func (db *DB) SrsSystem(ctx context.Context, id uuid.UUID) (flashcards.SrsSystem, error) {
	var name, stages string
	err := db.conn.QueryRowContext(ctx, `SELECT name, stages FROM srs_systems WHERE id = ?`, id).Scan(&name, &stages)
	if errors.Is(err, sql.ErrNoRows) {
		return flashcards.SrsSystem{}, fmt.Errorf("%w: srs system %s", ErrNotFound, id)
	}
	if err != nil {
		return flashcards.SrsSystem{}, fmt.Errorf("get srs system: %w", err)
	}
	var seconds []int
	if err := json.Unmarshal([]byte(stages), &seconds); err != nil {
		return flashcards.SrsSystem{}, fmt.Errorf("decode srs stages: %w", err)
	}
	return flashcards.NewSrsSystem(id, name, seconds)
}

// DefaultSrsSystem returns the default SRS system. It is read once and
// reused for the life of the DB.
func (db *DB) DefaultSrsSystem(ctx context.Context) (flashcards.SrsSystem, error) {
	db.srsMu.Lock()
	defer db.srsMu.Unlock()
	if db.defaultSrs != nil {
		return *db.defaultSrs, nil
	}
	sys, err := db.SrsSystem(ctx, flashcards.DefaultSrsSystemID)
	if err != nil {
		return flashcards.SrsSystem{}, err
	}
	db.defaultSrs = &sys
	return sys, nil
}
