package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/routergate/internal/clock"
	"github.com/ericfisherdev/routergate/internal/domain/model"
	"github.com/ericfisherdev/routergate/internal/domain/port/driven"
)

// ResetTokenTTL is how long an issued reset token stays valid.
const ResetTokenTTL = time.Hour

const resetTokenBytes = 32

// ResetTokenManager owns the reset token lifecycle: issued, then either
// consumed or expired. Expiry is computed on read and never stored.
type ResetTokenManager struct {
	store  driven.ResetTokenStore
	clock  clock.Clock
	logger *slog.Logger
}

// NewResetTokenManager creates a ResetTokenManager.
func NewResetTokenManager(store driven.ResetTokenStore, clk clock.Clock, logger *slog.Logger) *ResetTokenManager {
	return &ResetTokenManager{store: store, clock: clk, logger: logger}
}

// HashToken returns the hex SHA-256 digest under which a token is stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Issue creates a new token for userID. The plaintext token is returned to
// the caller exactly once; only its hash is persisted.
func (m *ResetTokenManager) Issue(ctx context.Context, userID int64) (string, time.Time, error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", time.Time{}, fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	now := m.clock.Now().UTC()
	expiresAt := now.Add(ResetTokenTTL)

	err := m.store.Create(ctx, model.ResetToken{
		UserID:    userID,
		TokenHash: HashToken(token),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("store reset token: %w", err)
	}
	m.logger.Debug("reset token issued", "user_id", userID, "expires_at", expiresAt)

	return token, expiresAt, nil
}

// Validate reports the token's state and, when found, its owner.
func (m *ResetTokenManager) Validate(ctx context.Context, token string) (model.ResetTokenStatus, int64, error) {
	if token == "" {
		return model.ResetTokenNotFound, 0, nil
	}

	stored, err := m.store.GetByHash(ctx, HashToken(token))
	if err != nil {
		return "", 0, fmt.Errorf("look up reset token: %w", err)
	}

	switch {
	case stored == nil:
		return model.ResetTokenNotFound, 0, nil
	case stored.Used:
		return model.ResetTokenAlreadyUsed, stored.UserID, nil
	case stored.IsExpired(m.clock.Now()):
		return model.ResetTokenExpired, stored.UserID, nil
	default:
		return model.ResetTokenValid, stored.UserID, nil
	}
}

// Consume marks the token used. The flip is a single conditional update, so
// when several callers race on one token exactly one gets nil.
func (m *ResetTokenManager) Consume(ctx context.Context, token string) error {
	if token == "" {
		return ErrTokenNotFound
	}

	flipped, err := m.store.MarkUsed(ctx, HashToken(token), m.clock.Now().UTC())
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	if flipped {
		return nil
	}

	status, _, err := m.Validate(ctx, token)
	if err != nil {
		return err
	}
	return statusError(status)
}

// statusError maps a non-valid status to its sentinel. A token that reads
// as valid after a failed flip lost a race and is reported as used.
func statusError(status model.ResetTokenStatus) error {
	switch status {
	case model.ResetTokenNotFound:
		return ErrTokenNotFound
	case model.ResetTokenExpired:
		return ErrTokenExpired
	default:
		return ErrTokenUsed
	}
}
