// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/routergate/internal/domain/model"
)

var (
	// ErrUserNotFound is returned when a user id does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when an email is already bound to another account.
	ErrEmailTaken = errors.New("email already registered")
)

// UserStore defines the driven port for operator account persistence.
// Credentials cross this boundary already hashed; the store never hashes.
type UserStore interface {
	// Create inserts a new user and returns it with ID and CreatedAt populated.
	// Returns ErrEmailTaken if the email is in use.
	Create(ctx context.Context, user model.User) (model.User, error)

	// GetByID returns the user or (nil, nil) if it does not exist.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// GetByEmail returns the user or (nil, nil) if it does not exist.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// List returns all users ordered by id.
	List(ctx context.Context) ([]model.User, error)

	// Update applies the non-nil fields of upd. Password, when set, is stored
	// verbatim as the credential.
	Update(ctx context.Context, id int64, upd model.UserUpdate) error

	// SetCredential replaces the stored credential for the user.
	SetCredential(ctx context.Context, id int64, credential string) error

	// Delete removes the user. Returns ErrUserNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of stored users.
	Count(ctx context.Context) (int, error)
}
