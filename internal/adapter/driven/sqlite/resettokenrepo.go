package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/routergate/internal/domain/model"
	"github.com/ericfisherdev/routergate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ResetTokenStore = (*ResetTokenRepo)(nil)

// ResetTokenRepo is the SQLite implementation of the ResetTokenStore port.
type ResetTokenRepo struct {
	db *DB
}

// NewResetTokenRepo creates a new ResetTokenRepo backed by the given DB.
func NewResetTokenRepo(db *DB) *ResetTokenRepo {
	return &ResetTokenRepo{db: db}
}

// Create stores an unused token.
func (r *ResetTokenRepo) Create(ctx context.Context, token model.ResetToken) error {
	const query = `INSERT INTO password_reset_tokens (user_id, token_hash, expires_at, used, created_at)
		VALUES (?, ?, ?, 0, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query, token.UserID, token.TokenHash, toMillis(token.ExpiresAt), toMillis(token.CreatedAt))
	if err != nil {
		return fmt.Errorf("create reset token for user %d: %w", token.UserID, err)
	}
	return nil
}

// GetByHash returns the token with the given hash, or nil, nil if absent.
func (r *ResetTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*model.ResetToken, error) {
	const query = `SELECT id, user_id, token_hash, expires_at, used, created_at
		FROM password_reset_tokens WHERE token_hash = ?`

	var (
		token     model.ResetToken
		expiresAt int64
		createdAt int64
	)
	err := r.db.Reader.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &expiresAt, &token.Used, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reset token: %w", err)
	}

	token.ExpiresAt = fromMillis(expiresAt)
	token.CreatedAt = fromMillis(createdAt)
	return &token, nil
}

// MarkUsed is a compare-and-swap on the used flag: the row only changes if
// it is still unused and unexpired, so of two racing callers exactly one
// observes true.
func (r *ResetTokenRepo) MarkUsed(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	const query = `UPDATE password_reset_tokens SET used = 1
		WHERE token_hash = ? AND used = 0 AND expires_at > ?`

	result, err := r.db.Writer.ExecContext(ctx, query, tokenHash, toMillis(now))
	if err != nil {
		return false, fmt.Errorf("mark reset token used: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return rows == 1, nil
}
