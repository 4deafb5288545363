package model

import "time"

// ResetToken is a single-use password reset grant. Only the SHA-256 hash of
// the token is ever persisted.
type ResetToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// IsExpired reports whether the token is no longer usable at now.
func (t ResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ResetTokenStatus is the outcome of validating a reset token.
type ResetTokenStatus string

const (
	ResetTokenValid       ResetTokenStatus = "valid"
	ResetTokenNotFound    ResetTokenStatus = "not_found"
	ResetTokenAlreadyUsed ResetTokenStatus = "already_used"
	ResetTokenExpired     ResetTokenStatus = "expired"
)
