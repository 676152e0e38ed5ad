// Package store persists accounts, card sources, decks, SRS systems and
// WaniKani credentials in SQLite.
//
// Every query is scoped to an account; rows belonging to other accounts are
// reported as ErrNotFound. The schema is managed by embedded migrations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sky-flux/flashcards"
	"github.com/sky-flux/flashcards/deck"
	"github.com/sky-flux/flashcards/wanikani"

	_ "modernc.org/sqlite" // SQLite driver
)

// Config holds database configuration settings.
type Config struct {
	// Path is the file path to the SQLite database.
	Path string

	// MaxOpenConns sets the maximum number of open connections.
	// Default: 1, SQLite serializes writers anyway.
	MaxOpenConns int

	// BusyTimeout sets how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// AutoMigrate applies pending migrations before the database is opened.
	AutoMigrate bool

	// Logger receives store diagnostics. Default: slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig(path string) *Config {
	return &Config{
		Path:         path,
		MaxOpenConns: 1,
		BusyTimeout:  5 * time.Second,
		AutoMigrate:  true,
	}
}

// DB is the flashcards database.
type DB struct {
	conn *sql.DB
	log  *slog.Logger

	srsMu      sync.Mutex
	defaultSrs *flashcards.SrsSystem
}

// Compile-time interface checks.
var (
	_ deck.Store               = (*DB)(nil)
	_ wanikani.CredentialStore = (*DB)(nil)
)

// Open opens the database described by config, creating its directory and
// applying migrations first when AutoMigrate is set.
func Open(config *Config) (*DB, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	if config.AutoMigrate {
		if err := migrateUp(config.Path); err != nil {
			return nil, err
		}
	}

	busy := config.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)",
		config.Path, busy.Milliseconds())

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	maxOpen := config.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	conn.SetMaxOpenConns(maxOpen)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log := config.Logger
	if log == nil {
		log = slog.Default()
	}
	return &DB{conn: conn, log: log}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func migrateUp(path string) error {
	mgr, err := NewMigrationManager(path)
	if err != nil {
		return fmt.Errorf("create migration manager: %w", err)
	}
	if err := mgr.Up(); err != nil {
		_ = mgr.Close()
		return fmt.Errorf("run migrations: %w", err)
	}
	return mgr.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
