package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/routergate/internal/domain/model"
)

// ResetTokenStore persists password reset tokens by hash. Rows are never
// deleted, so an expired token keeps reporting as expired.
type ResetTokenStore interface {
	// Create stores a new unused token.
	Create(ctx context.Context, token model.ResetToken) error

	// GetByHash returns the token or (nil, nil) if no token has that hash.
	GetByHash(ctx context.Context, tokenHash string) (*model.ResetToken, error)

	// MarkUsed flips the used flag if and only if the token is currently unused
	// and not expired at now. It reports whether this call performed the flip.
	MarkUsed(ctx context.Context, tokenHash string, now time.Time) (bool, error)
}
