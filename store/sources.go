package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sky-flux/flashcards"
	"github.com/sky-flux/flashcards/deck"
)

// NewSource describes a source to create. Groups are read for custom
// sources only, APIKey for WaniKani sources only.
type NewSource struct {
	Name   string
	Type   flashcards.SourceType
	Groups []flashcards.CardGroup
	APIKey string
}

// SourceUpdate describes changes to a source. Type must match the stored
// source. Nil fields are left unchanged.
type SourceUpdate struct {
	Type   flashcards.SourceType
	Name   *string
	Groups []flashcards.CardGroup // custom only
	APIKey *string                // wanikani only; a new key drops the cache
}

// CreateSource stores a new source at the end of the account's list.
// Custom groups start in lessons regardless of the stage they were sent with.
func (db *DB) CreateSource(ctx context.Context, account uuid.UUID, in NewSource) (uuid.UUID, error) {
	name := sanitizeText(in.Name)
	if name == "" {
		return uuid.Nil, fmt.Errorf("%w: source name is required", ErrInvalid)
	}
	if !in.Type.IsValid() {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalid, flashcards.ErrInvalidSourceType)
	}

	var version sql.NullInt64
	var contents sql.NullString
	if in.Type == flashcards.Custom {
		groups, err := prepareGroups(in.Groups)
		if err != nil {
			return uuid.Nil, err
		}
		v, data, err := encodeGroups(groups)
		if err != nil {
			return uuid.Nil, err
		}
		version = sql.NullInt64{Int64: int64(v), Valid: true}
		contents = sql.NullString{String: data, Valid: true}
	}

	id := uuid.New()
	err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO card_sources (id, account_id, name, type, position, groups_version, groups, created_at)
			 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM card_sources WHERE account_id = ?), ?, ?, ?)`,
			id, account, name, in.Type.String(), account, version, contents, now())
		if err != nil {
			return fmt.Errorf("insert source: %w", err)
		}
		if in.Type == flashcards.Wanikani && in.APIKey != "" {
			return setWanikaniKey(ctx, tx, id, in.APIKey)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// UpdateSource applies update to a source. Edited custom groups keep the
// stage and last review of the stored group with the same iid.
func (db *DB) UpdateSource(ctx context.Context, account, id uuid.UUID, update SourceUpdate) error {
	var name string
	if update.Name != nil {
		name = sanitizeText(*update.Name)
		if name == "" {
			return fmt.Errorf("%w: source name is required", ErrInvalid)
		}
	}
	var requested []flashcards.CardGroup
	if update.Groups != nil {
		var err error
		if requested, err = prepareGroups(update.Groups); err != nil {
			return err
		}
	}

	return db.WithTransaction(ctx, func(tx *sql.Tx) error {
		row, err := getSourceRow(ctx, tx, account, id)
		if err != nil {
			return err
		}
		if row.typ != update.Type {
			return fmt.Errorf("%w: source %s is %s, not %s", ErrTypeMismatch, id, row.typ, update.Type)
		}

		if update.Name != nil {
			if _, err := tx.ExecContext(ctx, `UPDATE card_sources SET name = ? WHERE id = ?`, name, id); err != nil {
				return fmt.Errorf("update source name: %w", err)
			}
		}

		switch row.typ {
		case flashcards.Custom:
			if requested == nil {
				return nil
			}
			existing, err := row.groups()
			if err != nil {
				return err
			}
			return writeGroups(ctx, tx, id, flashcards.MigrateGroups(requested, existing))
		case flashcards.Wanikani:
			if update.APIKey == nil {
				return nil
			}
			return setWanikaniKey(ctx, tx, id, *update.APIKey)
		}
		return nil
	})
}

// DeleteSource deletes a source and removes it from every deck.
func (db *DB) DeleteSource(ctx context.Context, account, id uuid.UUID) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM card_sources WHERE id = ? AND account_id = ?`, id, account)
	if err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	return expectRow(res, "source", id)
}

// ReorderSources moves the listed sources to the given order. Every id must
// belong to the account.
func (db *DB) ReorderSources(ctx context.Context, account uuid.UUID, order []uuid.UUID) error {
	return db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return reorder(ctx, tx, "card_sources", account, order, ErrUnknownSource)
	})
}

// Sources returns the account's sources in their stored order.
func (db *DB) Sources(ctx context.Context, account uuid.UUID) ([]deck.CardSource, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, type, groups_version, groups FROM card_sources
		 WHERE account_id = ? ORDER BY position, rowid`, account)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []deck.CardSource
	for rows.Next() {
		var r sourceRow
		if err := r.scan(rows); err != nil {
			return nil, err
		}
		src, err := r.source(db.log)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return out, nil
}

// Source returns one of the account's sources.
func (db *DB) Source(ctx context.Context, account, id uuid.UUID) (deck.CardSource, error) {
	r, err := getSourceRow(ctx, db.conn, account, id)
	if err != nil {
		return nil, err
	}
	return r.source(db.log)
}

// SubmitReview records a review of one group of a custom source, moving it
// to its adjusted stage, last reviewed at now. It returns the updated group.
func (db *DB) SubmitReview(ctx context.Context, account, source uuid.UUID, iid int64, timesIncorrect []int, now time.Time) (flashcards.CardGroup, error) {
	var updated flashcards.CardGroup
	err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
		row, err := getSourceRow(ctx, tx, account, source)
		if err != nil {
			return err
		}
		if row.typ != flashcards.Custom {
			return fmt.Errorf("%w: source %s is %s", ErrNotCustom, source, row.typ)
		}
		groups, err := row.groups()
		if err != nil {
			return err
		}
		i := slices.IndexFunc(groups, func(g flashcards.CardGroup) bool { return g.IID == iid })
		if i < 0 {
			return fmt.Errorf("%w: card group %d in source %s", ErrNotFound, iid, source)
		}
		stage, err := flashcards.AdjustStage(groups[i].Stage, timesIncorrect)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		groups[i] = groups[i].Reviewed(stage, now.UTC())
		updated = groups[i]
		return writeGroups(ctx, tx, source, groups)
	})
	if err != nil {
		return flashcards.CardGroup{}, err
	}
	return updated, nil
}

type sourceRow struct {
	id       uuid.UUID
	name     string
	typ      flashcards.SourceType
	version  sql.NullInt64
	contents sql.NullString
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *sourceRow) scan(s scanner) error {
	var typ string
	if err := s.Scan(&r.id, &r.name, &typ, &r.version, &r.contents); err != nil {
		return err
	}
	t, err := flashcards.ParseSourceType(typ)
	if err != nil {
		return err
	}
	r.typ = t
	return nil
}

func (r *sourceRow) groups() ([]flashcards.CardGroup, error) {
	if !r.contents.Valid {
		return nil, nil
	}
	return decodeGroups(int(r.version.Int64), r.contents.String)
}

// source converts the row. Card groups that fail to decode are logged and
// dropped, so one broken row never blocks scheduling of the others.
func (r *sourceRow) source(log *slog.Logger) (deck.CardSource, error) {
	switch r.typ {
	case flashcards.Custom:
		groups, err := r.groups()
		if err != nil {
			log.Warn("discarding malformed card groups", "source", r.id, "error", err)
			groups = nil
		}
		return deck.CustomSource{ID: r.id, Name: r.name, Groups: groups}, nil
	case flashcards.Wanikani:
		return deck.WanikaniSource{ID: r.id, Name: r.name}, nil
	}
	return nil, fmt.Errorf("%w: %v", flashcards.ErrInvalidSourceType, r.typ)
}

func getSourceRow(ctx context.Context, q querier, account, id uuid.UUID) (sourceRow, error) {
	var r sourceRow
	err := r.scan(q.QueryRowContext(ctx,
		`SELECT id, name, type, groups_version, groups FROM card_sources
		 WHERE id = ? AND account_id = ?`, id, account))
	if errors.Is(err, sql.ErrNoRows) {
		return sourceRow{}, fmt.Errorf("%w: source %s", ErrNotFound, id)
	}
	if err != nil {
		return sourceRow{}, fmt.Errorf("get source: %w", err)
	}
	return r, nil
}

func writeGroups(ctx context.Context, tx *sql.Tx, id uuid.UUID, groups []flashcards.CardGroup) error {
	version, data, err := encodeGroups(groups)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE card_sources SET groups_version = ?, groups = ? WHERE id = ?`, version, data, id)
	if err != nil {
		return fmt.Errorf("update card groups: %w", err)
	}
	return nil
}

// reorder sets position = index for each id of table owned by account.
// Ids the account does not own are reported as unknown.
func reorder(ctx context.Context, tx *sql.Tx, table string, account uuid.UUID, order []uuid.UUID, unknown error) error {
	seen := make(map[uuid.UUID]bool, len(order))
	for i, id := range order {
		if seen[id] {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalid, id)
		}
		seen[id] = true
		res, err := tx.ExecContext(ctx,
			`UPDATE `+table+` SET position = ? WHERE id = ? AND account_id = ?`, i, id, account)
		if err != nil {
			return fmt.Errorf("reorder %s: %w", strings.ReplaceAll(table, "_", " "), err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("%w: %s", unknown, id)
		}
	}
	return nil
}

func expectRow(res sql.Result, what string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return nil
}
