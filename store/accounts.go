package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// EnsureAccount returns the account of an authenticated user, creating it on
// first use.
func (db *DB) EnsureAccount(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO NOTHING`,
		uuid.New(), userID, now())
	if err != nil {
		return uuid.Nil, fmt.Errorf("create account: %w", err)
	}

	var id uuid.UUID
	err = db.conn.QueryRowContext(ctx, `SELECT id FROM accounts WHERE user_id = ?`, userID).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("get account: %w", err)
	}
	return id, nil
}
