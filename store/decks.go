package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sky-flux/flashcards/deck"
)

// CreateDeck stores a new deck of sources at the end of the account's list.
func (db *DB) CreateDeck(ctx context.Context, account uuid.UUID, name string, sources []uuid.UUID) (uuid.UUID, error) {
	name = sanitizeText(name)
	if name == "" {
		return uuid.Nil, fmt.Errorf("%w: deck name is required", ErrInvalid)
	}
	id := uuid.New()
	err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO decks (id, account_id, name, position, created_at)
			 VALUES (?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM decks WHERE account_id = ?), ?)`,
			id, account, name, account, now())
		if err != nil {
			return fmt.Errorf("insert deck: %w", err)
		}
		return setDeckSources(ctx, tx, account, id, sources)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// UpdateDeck renames a deck and/or replaces its sources. Nil arguments are
// left unchanged; an empty non-nil slice empties the deck.
func (db *DB) UpdateDeck(ctx context.Context, account, id uuid.UUID, name *string, sources []uuid.UUID) error {
	var clean string
	if name != nil {
		if clean = sanitizeText(*name); clean == "" {
			return fmt.Errorf("%w: deck name is required", ErrInvalid)
		}
	}
	return db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := ownsDeck(ctx, tx, account, id); err != nil {
			return err
		}
		if name != nil {
			if _, err := tx.ExecContext(ctx, `UPDATE decks SET name = ? WHERE id = ?`, clean, id); err != nil {
				return fmt.Errorf("update deck name: %w", err)
			}
		}
		if sources == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM deck_sources WHERE deck_id = ?`, id); err != nil {
			return fmt.Errorf("clear deck sources: %w", err)
		}
		return setDeckSources(ctx, tx, account, id, sources)
	})
}

// DeleteDeck deletes a deck. Its sources are kept.
func (db *DB) DeleteDeck(ctx context.Context, account, id uuid.UUID) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM decks WHERE id = ? AND account_id = ?`, id, account)
	if err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}
	return expectRow(res, "deck", id)
}

// ReorderDecks moves the listed decks to the given order.
func (db *DB) ReorderDecks(ctx context.Context, account uuid.UUID, order []uuid.UUID) error {
	return db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return reorder(ctx, tx, "decks", account, order, ErrNotFound)
	})
}

// Decks returns the account's decks in their stored order.
func (db *DB) Decks(ctx context.Context, account uuid.UUID) ([]deck.Deck, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name FROM decks WHERE account_id = ? ORDER BY position, rowid`, account)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	var decks []deck.Deck
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var d deck.Deck
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan deck: %w", err)
		}
		d.Sources = []uuid.UUID{}
		index[d.ID] = len(decks)
		decks = append(decks, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}

	rows, err = db.conn.QueryContext(ctx,
		`SELECT ds.deck_id, ds.source_id FROM deck_sources ds
		 JOIN decks d ON d.id = ds.deck_id
		 WHERE d.account_id = ? ORDER BY ds.deck_id, ds.position`, account)
	if err != nil {
		return nil, fmt.Errorf("list deck sources: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var deckID, sourceID uuid.UUID
		if err := rows.Scan(&deckID, &sourceID); err != nil {
			return nil, fmt.Errorf("scan deck source: %w", err)
		}
		if i, ok := index[deckID]; ok {
			decks[i].Sources = append(decks[i].Sources, sourceID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deck sources: %w", err)
	}
	return decks, nil
}

// Deck returns one of the account's decks.
func (db *DB) Deck(ctx context.Context, account, id uuid.UUID) (deck.Deck, error) {
	d := deck.Deck{ID: id, Sources: []uuid.UUID{}}
	err := db.conn.QueryRowContext(ctx,
		`SELECT name FROM decks WHERE id = ? AND account_id = ?`, id, account).Scan(&d.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return deck.Deck{}, fmt.Errorf("%w: deck %s", ErrNotFound, id)
	}
	if err != nil {
		return deck.Deck{}, fmt.Errorf("get deck: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT source_id FROM deck_sources WHERE deck_id = ? ORDER BY position`, id)
	if err != nil {
		return deck.Deck{}, fmt.Errorf("get deck sources: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var src uuid.UUID
		if err := rows.Scan(&src); err != nil {
			return deck.Deck{}, fmt.Errorf("scan deck source: %w", err)
		}
		d.Sources = append(d.Sources, src)
	}
	if err := rows.Err(); err != nil {
		return deck.Deck{}, fmt.Errorf("get deck sources: %w", err)
	}
	return d, nil
}

// setDeckSources links sources to a deck in order. Every source must belong
// to the account.
func setDeckSources(ctx context.Context, tx *sql.Tx, account, deckID uuid.UUID, sources []uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(sources))
	for i, src := range sources {
		if seen[src] {
			return fmt.Errorf("%w: source %s listed twice", ErrInvalid, src)
		}
		seen[src] = true
		res, err := tx.ExecContext(ctx,
			`INSERT INTO deck_sources (deck_id, source_id, position)
			 SELECT ?, id, ? FROM card_sources WHERE id = ? AND account_id = ?`,
			deckID, i, src, account)
		if err != nil {
			return fmt.Errorf("add deck source: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("%w: %s", ErrUnknownSource, src)
		}
	}
	return nil
}

func ownsDeck(ctx context.Context, tx *sql.Tx, account, id uuid.UUID) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM decks WHERE id = ? AND account_id = ?`, id, account).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: deck %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("get deck: %w", err)
	}
	return nil
}
