package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	dirPermissions  = 0750
	filePermissions = 0600

	// openTimeout bounds the connectivity check in Open.
	openTimeout = 5 * time.Second
)

// DB is the gateway's SQLite handle. It embeds *sql.DB, so repositories
// use the standard query methods directly; the wrapper adds the schema
// migration runner and a health check.
//
// Durable state only: the device identification record and dashboard
// user accounts. Sensor readings never land here.
type DB struct {
	*sql.DB
	path string
}

// Config maps the database section of config.yaml.
type Config struct {
	// Path to the SQLite file; its directory is created on first run.
	Path string

	// WALMode turns on write-ahead logging so reads proceed during writes.
	WALMode bool

	// BusyTimeout is how long to wait for a locked database, in seconds.
	BusyTimeout int
}

func (c Config) connString() string {
	s := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", c.Path, c.BusyTimeout*1000)
	if c.WALMode {
		s += "&_journal_mode=WAL&_synchronous=NORMAL"
	}
	return s
}

// Open connects to the SQLite file, creating it (and its directory) when
// missing, and verifies the connection before returning.
//
// The pool is pinned to a single connection. SQLite allows one writer at
// a time; funnelling everything through one connection avoids lock
// errors without a busy-wait.
func Open(cfg Config) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", cfg.connString())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	db := &DB{DB: sqlDB, path: cfg.Path}

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	// Tighten to owner-only. On the very first run the file may not
	// exist until the first write, so a failure here is fine.
	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck

	return db, nil
}

// Close shuts the connection down. Safe to call on a zero DB.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path returns the filesystem location of the database file.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck runs a trivial query to prove the connection is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
