package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/routergate/internal/domain/model"
	"github.com/ericfisherdev/routergate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port interface.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo backed by the given DB.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, name, email, credential, enabled, created_at`

// Create inserts a new user. Returns ErrEmailTaken if the email already exists.
func (r *UserRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	const query = `INSERT INTO users (name, email, credential, enabled) VALUES (?, ?, ?, ?)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.Writer.QueryRowContext(ctx, query, user.Name, user.Email, user.Credential, user.Enabled))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("create user %s: %w", user.Email, driven.ErrEmailTaken)
		}
		return model.User{}, fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return *created, nil
}

// GetByID returns the user with the given id, or nil, nil if absent.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// GetByEmail returns the user with the given email (case-insensitive), or nil, nil if absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	user, err := scanUser(r.db.Reader.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Update applies the non-nil fields of upd. The column list is fixed; only
// name, email, credential and enabled can ever be written here.
func (r *UserRepo) Update(ctx context.Context, id int64, upd model.UserUpdate) error {
	var (
		sets []string
		args []any
	)
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.Password != nil {
		sets = append(sets, "credential = ?")
		args = append(args, *upd.Password)
	}
	if upd.Enabled != nil {
		sets = append(sets, "enabled = ?")
		args = append(args, *upd.Enabled)
	}
	if len(sets) == 0 {
		return nil
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, id)

	result, err := r.db.Writer.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user %d: %w", id, driven.ErrEmailTaken)
		}
		return fmt.Errorf("update user %d: %w", id, err)
	}

	return requireAffected(result, fmt.Sprintf("update user %d", id))
}

// SetCredential replaces the stored credential.
func (r *UserRepo) SetCredential(ctx context.Context, id int64, credential string) error {
	const query = `UPDATE users SET credential = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, credential, id)
	if err != nil {
		return fmt.Errorf("set credential for user %d: %w", id, err)
	}

	return requireAffected(result, fmt.Sprintf("set credential for user %d", id))
}

// Delete removes the user and, by cascade, its reset tokens.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	return requireAffected(result, fmt.Sprintf("delete user %d", id))
}

// Count returns the number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		user      model.User
		createdAt string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Credential, &user.Enabled, &createdAt); err != nil {
		return nil, err
	}

	var err error
	user.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for user %d: %w", user.ID, err)
	}

	return &user, nil
}

func requireAffected(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, driven.ErrUserNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint")
}
