package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// UserRepository persists dashboard user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

const userColumns = "id, username, password_hash, role, is_active, created_at, updated_at"

// SQLiteUserRepository stores accounts in the gateway's SQLite file.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewUserRepository wraps the users table.
func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// newUserID mints a short user identifier, e.g. "usr-3fa85f64".
func newUserID() string {
	return "usr-" + uuid.NewString()[:8]
}

// Create inserts an account, minting an ID when the caller left it
// empty. A taken username reports ErrUsernameExists.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = newUserID()
	}

	now := time.Now().UTC().Truncate(time.Second)
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, string(user.Role),
		boolToInt(user.IsActive), formatTime(now), formatTime(now),
	)
	if isUniqueViolation(err) {
		return ErrUsernameExists
	}
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

// List returns every account, oldest first.
func (r *SQLiteUserRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

// Update rewrites the mutable account fields: role and is_active.
func (r *SQLiteUserRepository) Update(ctx context.Context, user *User) error {
	user.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	return r.execOnUser(ctx, "updating user",
		`UPDATE users SET role = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		string(user.Role), boolToInt(user.IsActive), formatTime(user.UpdatedAt), user.ID,
	)
}

// UpdatePassword swaps the stored credential hash.
func (r *SQLiteUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.execOnUser(ctx, "updating password",
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, formatTime(time.Now().UTC()), id,
	)
}

// Delete removes an account.
func (r *SQLiteUserRepository) Delete(ctx context.Context, id string) error {
	return r.execOnUser(ctx, "deleting user",
		"DELETE FROM users WHERE id = ?", id)
}

// Count reports how many accounts exist. Seeding uses this to decide
// whether to create the initial admin.
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// execOnUser runs a statement that must touch exactly one account row;
// zero rows means the user does not exist.
func (r *SQLiteUserRepository) execOnUser(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// scanUser reads one account from a row or result set.
func scanUser(row interface{ Scan(dest ...any) error }) (*User, error) {
	var (
		u                    User
		role                 string
		isActive             int
		createdAt, updatedAt string
	)

	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &isActive, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = Role(role)
	u.IsActive = isActive != 0
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return &u, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime reads a stored RFC3339 timestamp. The column is written by
// this package only, so a parse failure just yields the zero time.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s) //nolint:errcheck
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation matches the driver error for a UNIQUE constraint
// failure on the username column.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
