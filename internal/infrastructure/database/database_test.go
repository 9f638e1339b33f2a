package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// openTestDB opens a throwaway gateway database under t.TempDir with the
// same settings main uses.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "sensorgate.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	return db
}

func TestOpenCreatesFileAndDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "sensorgate", "sensorgate.db")

	db, err := Open(Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // test cleanup

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file missing: %v", err)
	}
	if db.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
	}
}

func TestOpenEnforcesForeignKeys(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // test cleanup

	var enabled int
	if err := db.QueryRowContext(context.Background(), "PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if enabled != 1 {
		t.Error("foreign key enforcement is off")
	}
}

func TestOpenSingleWriterPool(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // test cleanup

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // test cleanup

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestHealthCheckAfterClose(t *testing.T) {
	db := openTestDB(t)
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := db.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() succeeded on a closed database")
	}
}

func TestCloseZeroValue(t *testing.T) {
	var db DB
	if err := db.Close(); err != nil {
		t.Errorf("Close() on zero DB error = %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // test cleanup

	ctx := context.Background()
	_, err := db.ExecContext(ctx, `
		CREATE TABLE readings_meta (
			sensor_type TEXT PRIMARY KEY,
			unit        TEXT NOT NULL
		)
	`)
	if err != nil {
		t.Fatalf("CREATE TABLE: %v", err)
	}

	if _, err := db.ExecContext(ctx,
		"INSERT INTO readings_meta (sensor_type, unit) VALUES (?, ?)",
		"temperature", "celsius",
	); err != nil {
		t.Fatalf("INSERT: %v", err)
	}

	var unit string
	if err := db.QueryRowContext(ctx,
		"SELECT unit FROM readings_meta WHERE sensor_type = ?", "temperature",
	).Scan(&unit); err != nil {
		t.Fatalf("SELECT: %v", err)
	}
	if unit != "celsius" {
		t.Errorf("unit = %q, want celsius", unit)
	}
}
