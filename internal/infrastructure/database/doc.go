// Package database provides SQLite database connectivity for sensorgate.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations (additive-only)
//   - Connection pooling and lifecycle management
//
// The gateway keeps its durable state here: the device identification
// record served by the information API and the dashboard user accounts.
// Telemetry readings are ephemeral and never written to SQLite.
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Performance Characteristics:
//   - WAL mode allows concurrent reads during writes
//   - Busy timeout prevents lock contention errors
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	// Run migrations
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration Strategy:
//
// The schema moves forward only; there are no down migrations. Each
// step lives in a "YYYYMMDD_HHMMSS_description.up.sql" file embedded by
// the migrations package, runs once inside its own transaction, and is
// recorded in schema_migrations. Keep new columns NULLABLE or give them
// DEFAULT values so older binaries can still read the file.
package database
