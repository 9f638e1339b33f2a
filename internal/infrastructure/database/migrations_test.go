package database

import (
	"context"
	"embed"
	"testing"
)

//go:embed testdata/*.sql
var testMigrationsFS embed.FS

// useTestMigrations points the runner at the testdata schema and
// restores the real embedded set on cleanup.
func useTestMigrations(t *testing.T) {
	t.Helper()

	origFS, origDir := MigrationsFS, MigrationsDir
	t.Cleanup(func() {
		MigrationsFS = origFS
		MigrationsDir = origDir
	})

	MigrationsFS = testMigrationsFS
	MigrationsDir = "testdata"
}

func TestMigrate(t *testing.T) {
	useTestMigrations(t)

	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // test cleanup

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	var table string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='device_registry'",
	).Scan(&table)
	if err != nil {
		t.Fatalf("device_registry table not created: %v", err)
	}

	var version string
	err = db.QueryRowContext(ctx, "SELECT version FROM schema_migrations").Scan(&version)
	if err != nil {
		t.Fatalf("reading schema_migrations: %v", err)
	}
	if version != "20260815_120000" {
		t.Errorf("recorded version = %q, want 20260815_120000", version)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	useTestMigrations(t)

	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // test cleanup

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("first Migrate() error = %v", err)
	}
	// A second run must skip the already applied step; re-executing the
	// CREATE TABLE would fail.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("counting schema_migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("schema_migrations rows = %d, want 1", count)
	}
}

func TestMigrateWithoutEmbeddedFiles(t *testing.T) {
	origFS, origDir := MigrationsFS, MigrationsDir
	t.Cleanup(func() {
		MigrationsFS = origFS
		MigrationsDir = origDir
	})
	MigrationsFS = embed.FS{}
	MigrationsDir = "."

	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() with no migrations error = %v", err)
	}
}

func TestSplitMigrationFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion string
		wantName    string
		wantOk      bool
	}{
		{"20260815_100000_initial_schema.up.sql", "20260815_100000", "initial_schema", true},
		{"20260901_083000_add_picture_table.up.sql", "20260901_083000", "add_picture_table", true},
		{"20260815_100000_initial_schema.down.sql", "", "", false},
		{"20260815_100000.up.sql", "", "", false},
		{"notes.txt", "", "", false},
		{"schema.up.sql", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := splitMigrationFilename(tt.filename)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if version != tt.wantVersion || name != tt.wantName {
				t.Errorf("got (%q, %q), want (%q, %q)", version, name, tt.wantVersion, tt.wantName)
			}
		})
	}
}
