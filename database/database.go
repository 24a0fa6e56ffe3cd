package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite3 driver
)

// Store owns all persisted state: per-guild configuration and per-thread
// lifecycle records. Every other component reads and writes through it.
type Store struct {
	db *sql.DB
}

// Open initializes the database connection at the given path and ensures the
// schema exists.
func Open(dbPath string) (*Store, error) {
	// Ensure the directory for the database file exists.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open the SQLite database. It will be created if it doesn't exist.
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps read-modify-write sequences on one thread's
	// row from interleaving with the scheduler's sweep.
	db.SetMaxOpenConns(1)

	// Ping the database to verify the connection.
	if err = db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close() // Close the connection if table creation fails
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("Successfully connected to the database at", dbPath)
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the configuration and lifecycle tables if they don't exist.
func createTables(db *sql.DB) error {
	query := `
    CREATE TABLE IF NOT EXISTS guild_settings (
        guild_id TEXT PRIMARY KEY,
        dm_on_delete INTEGER NOT NULL DEFAULT 1,
        resolve_by_support INTEGER NOT NULL DEFAULT 1
    );
    CREATE TABLE IF NOT EXISTS monitored_channels (
        guild_id TEXT NOT NULL,
        channel_id TEXT NOT NULL,
        PRIMARY KEY (guild_id, channel_id)
    );
    CREATE TABLE IF NOT EXISTS support_roles (
        guild_id TEXT NOT NULL,
        role_id TEXT NOT NULL,
        PRIMARY KEY (guild_id, role_id)
    );
    CREATE TABLE IF NOT EXISTS solution_tags (
        guild_id TEXT NOT NULL,
        forum_id TEXT NOT NULL,
        tag_id TEXT NOT NULL,
        PRIMARY KEY (guild_id, forum_id)
    );
    CREATE TABLE IF NOT EXISTS escalation_settings (
        guild_id TEXT PRIMARY KEY,
        enabled INTEGER NOT NULL DEFAULT 0,
        staleness_seconds INTEGER NOT NULL DEFAULT 0,
        notify_channel_id TEXT NOT NULL DEFAULT ''
    );
    CREATE TABLE IF NOT EXISTS thread_states (
        thread_id TEXT PRIMARY KEY,
        guild_id TEXT NOT NULL,
        parent_id TEXT NOT NULL,
        op_id TEXT NOT NULL,
        status TEXT NOT NULL DEFAULT 'open',
        last_qualifying_reply INTEGER NOT NULL,
        created_at INTEGER NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_thread_states_guild_status
        ON thread_states (guild_id, status, thread_id);`

	_, err := db.Exec(query)
	return err
}

// ensureGuild makes sure a guild has a settings row so that configuration
// writes for a previously unseen guild succeed.
func ensureGuild(tx *sql.Tx, guildID string) error {
	_, err := tx.Exec(`INSERT OR IGNORE INTO guild_settings (guild_id) VALUES (?)`, guildID)
	return err
}

// withTx runs fn inside a transaction and commits it if fn succeeds.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
