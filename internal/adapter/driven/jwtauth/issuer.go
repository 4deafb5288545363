// Package jwtauth implements the SessionIssuer port with HS256 JWTs.
package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ericfisherdev/routergate/internal/clock"
	"github.com/ericfisherdev/routergate/internal/domain/port/driven"
)

const issuerName = "routergate"

// Claims carries the authenticated user id alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// Compile-time interface satisfaction check.
var _ driven.SessionIssuer = (*Issuer)(nil)

// Issuer signs and verifies session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewIssuer creates an Issuer. secret must be non-empty.
func NewIssuer(secret []byte, ttl time.Duration, clk clock.Clock) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtauth: empty signing secret")
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Issuer{secret: secret, ttl: ttl, clock: clk}, nil
}

// Issue returns a signed token for userID and its expiry.
func (i *Issuer) Issue(userID int64) (string, time.Time, error) {
	now := i.clock.Now()
	expiresAt := now.Add(i.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the user id.
func (i *Issuer) Verify(tokenString string) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock.Now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", driven.ErrInvalidSession, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, driven.ErrInvalidSession
	}

	return claims.UserID, nil
}
