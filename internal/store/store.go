// Package store persists the normalized music catalog in a relational
// database behind database/sql. SQLite is the default engine; PostgreSQL
// is supported for libraries that live on a network host. All schema
// knowledge and SQL lives here; the catalog package never sees a
// connection.
package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

const currentSchemaVersion = 2

// Config selects the database engine and how to reach it.
type Config struct {
	Driver string // "sqlite" (default) or "postgres"
	Path   string // database file, sqlite only
	DSN    string // connection string, postgres only
}

// Store represents the persistent music catalog.
type Store struct {
	db     *sql.DB
	driver string
}

// Open opens or creates the catalog database and brings its schema up to
// date.
func Open(cfg Config) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}

	var db *sql.DB
	var err error
	switch driver {
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_timeout=5000&_busy_timeout=5000", cfg.Path)
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// SQLite works best with a single writer, and does not enforce
		// foreign keys unless asked.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	case "postgres":
		db, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	store := &Store{db: db, driver: driver}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// rebind converts ?-style placeholders to the $n form PostgreSQL
// expects. SQLite queries pass through untouched.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// migrate applies database migrations.
func (s *Store) migrate() error {
	version, err := s.getSchemaVersion()
	if err != nil {
		return err
	}
	if version >= currentSchemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if version < 1 {
		if _, err := tx.Exec(schemaV1); err != nil {
			return fmt.Errorf("failed to apply schema v1: %w", err)
		}
		if err := s.setSchemaVersion(tx, 1); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}

	// Schema v2 - lookup indexes for dimension resolution and joins
	if version < 2 {
		if _, err := tx.Exec(schemaV2); err != nil {
			return fmt.Errorf("failed to apply schema v2: %w", err)
		}
		if err := s.setSchemaVersion(tx, 2); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}

// getSchemaVersion returns the current schema version.
func (s *Store) getSchemaVersion() (int, error) {
	var exists int
	var err error
	switch s.driver {
	case "postgres":
		err = s.db.QueryRow(`
			SELECT COUNT(*) FROM information_schema.tables
			WHERE table_name = 'schema_version'
		`).Scan(&exists)
	default:
		err = s.db.QueryRow(`
			SELECT COUNT(*) FROM sqlite_master
			WHERE type='table' AND name='schema_version'
		`).Scan(&exists)
	}
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}

	var version int
	err = s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// setSchemaVersion records a schema version in a transaction.
func (s *Store) setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec(s.rebind("INSERT INTO schema_version (version) VALUES (?)"), version)
	return err
}

// Transaction executes a function within a transaction. Every logical
// catalog mutation goes through here: all rows of a plan commit or none
// do, so a constraint violation partway through never leaves a dangling
// foreign key behind.
func (s *Store) Transaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
