package information

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/database"
)

// Repository defines persistence operations for identification records.
type Repository interface {
	// Get retrieves the record for a device name.
	// Returns ErrNotFound if no record exists.
	Get(ctx context.Context, deviceName string) (*Information, error)

	// Update applies the given field values and returns the updated record.
	// Returns ErrUnknownField if any field is outside the allow-list
	// (no fields are applied) and ErrNotFound if the record does not exist.
	Update(ctx context.Context, deviceName string, fields map[string]string) (*Information, error)

	// Ensure creates an empty record for the device if none exists.
	Ensure(ctx context.Context, deviceName string) error
}

// selectColumns is the column list for reads, in Information field order.
const selectColumns = `device_name, device_class, manufacturer, manufacturer_uri, model,
	product_code, hardware_revision, software_revision, serial_number,
	product_instance_uri, webshop_uri, sys_descr, sys_name, sys_contact,
	sys_location, updated_at`

// SQLiteRepository implements Repository backed by the gateway database.
type SQLiteRepository struct {
	db *database.DB
}

// NewSQLiteRepository creates a repository using the given database.
func NewSQLiteRepository(db *database.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get retrieves the record for a device name.
func (r *SQLiteRepository) Get(ctx context.Context, deviceName string) (*Information, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM information WHERE device_name = ?",
		deviceName,
	)
	return scanInformation(row)
}

// Ensure creates an empty record for the device if none exists.
// Called once at startup so the information API always has a row to serve.
func (r *SQLiteRepository) Ensure(ctx context.Context, deviceName string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO information (device_name, updated_at) VALUES (?, ?)",
		deviceName,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("ensuring information record: %w", err)
	}
	return nil
}

// Update applies the given field values and returns the updated record.
//
// Every field name is validated against the allow-list before any SQL
// is built; the column identifiers come from fieldColumns and values are
// bound parameters, so request input never reaches the statement text.
//
// The fields are written as a single multi-column UPDATE rather than one
// statement per field. The observable result is the same — each named
// field takes its new value, all others keep theirs — but a request is
// applied all-or-nothing instead of field by field.
func (r *SQLiteRepository) Update(ctx context.Context, deviceName string, fields map[string]string) (*Information, error) {
	if len(fields) == 0 {
		return r.Get(ctx, deviceName)
	}

	// Validate the whole update before touching the database.
	setClauses := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for _, name := range FieldNames() {
		value, ok := fields[name]
		if !ok {
			continue
		}
		setClauses = append(setClauses, fieldColumns[name]+" = ?")
		args = append(args, value)
	}
	if len(setClauses) != len(fields) {
		for name := range fields {
			if !IsUpdatableField(name) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
			}
		}
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339), deviceName)

	result, err := r.db.ExecContext(ctx,
		"UPDATE information SET "+strings.Join(setClauses, ", ")+" WHERE device_name = ?",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating information: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return r.Get(ctx, deviceName)
}

// scanInformation scans a single record row.
func scanInformation(row *sql.Row) (*Information, error) {
	var info Information
	var updatedAt string

	err := row.Scan(
		&info.DeviceName,
		&info.DeviceClass,
		&info.Manufacturer,
		&info.ManufacturerURI,
		&info.Model,
		&info.ProductCode,
		&info.HardwareRevision,
		&info.SoftwareRevision,
		&info.SerialNumber,
		&info.ProductInstanceURI,
		&info.WebshopURI,
		&info.SysDescr,
		&info.SysName,
		&info.SysContact,
		&info.SysLocation,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning information row: %w", err)
	}

	// Timestamp format is controlled by us; parse errors leave zero time.
	info.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is controlled

	return &info, nil
}
