package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daylog/internal/domain"
	"daylog/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	bio TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// profile columns were added after the first release
var userProfileColumns = map[string]string{
	"display_name": "TEXT NOT NULL DEFAULT ''",
	"bio":          "TEXT NOT NULL DEFAULT ''",
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return ensureColumns(ctx, r.db, "users", userProfileColumns)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, password_hash, display_name, bio, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.DisplayName,
		user.Bio,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert user %q: %w", user.Username, domain.ErrDuplicateUsername)
		}
		return 0, domain.NewStorageError("insert user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.NewStorageError("user last insert id", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, password_hash, display_name, bio, created_at, updated_at
FROM users
WHERE username = ?`,
		username,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, password_hash, display_name, bio, created_at, updated_at
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, displayName, bio string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET display_name=?, bio=?, updated_at=?
WHERE id=?`,
		displayName,
		bio,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return domain.NewStorageError("update user profile", err)
	}
	return expectRow(res, "user")
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET password_hash=?, updated_at=?
WHERE id=?`,
		passwordHash,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return domain.NewStorageError("update user password", err)
	}
	return expectRow(res, "user")
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Bio,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
		}
		return nil, domain.NewStorageError("scan user", err)
	}
	return &user, nil
}

// expectRow maps a zero-row write to ErrNotFound.
func expectRow(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError(entity+" rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", entity, domain.ErrNotFound)
	}
	return nil
}
