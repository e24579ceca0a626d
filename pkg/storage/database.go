// Package storage persists generated content, edit history, research
// analyses, and topic proposals. It supports both SQLite and PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is a database connection with migration support.
type DB struct {
	*sql.DB
	driver   string
	mu       sync.Mutex
	migrated bool
}

// Config holds database configuration.
type Config struct {
	Driver string // "postgres" or "sqlite"
	DSN    string // connection string, or SQLite file path
}

// DefaultConfig checks DATABASE_URL first and falls back to a SQLite file
// under dataDir.
func DefaultConfig(dataDir string) *Config {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return &Config{Driver: "postgres", DSN: dbURL}
	}
	return &Config{Driver: "sqlite", DSN: filepath.Join(dataDir, "daccia.db")}
}

// New opens a database connection and verifies it.
func New(cfg *Config) (*DB, error) {
	var driver, dsn string

	switch cfg.Driver {
	case "postgres", "postgresql":
		driver = "postgres"
		dsn = cfg.DSN
	case "sqlite", "sqlite3", "":
		driver = "sqlite3"
		dsn = cfg.DSN
		if dsn == "" {
			dsn = "daccia.db"
		}
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, driver: driver}, nil
}

// Driver returns the database driver name.
func (d *DB) Driver() string {
	return d.driver
}

// Migrate runs all pending migrations using goose.
func (d *DB) Migrate(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.migrated {
		return nil
	}

	goose.SetBaseFS(migrationsFS)

	dialect := "postgres"
	if d.driver == "sqlite3" {
		dialect = "sqlite3"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, d.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.migrated = true
	return nil
}

// NewUUID generates a new record id.
func NewUUID() string {
	return uuid.New().String()
}

// NullString creates a sql.NullString from a possibly empty string.
func NullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
