package driven

import (
	"errors"
	"time"
)

// ErrInvalidSession is returned when a session token is malformed, forged or expired.
var ErrInvalidSession = errors.New("invalid session token")

// SessionIssuer mints and verifies API session tokens for logged-in users.
type SessionIssuer interface {
	Issue(userID int64) (token string, expiresAt time.Time, err error)
	Verify(token string) (userID int64, err error)
}
