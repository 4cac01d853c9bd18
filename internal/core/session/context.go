// Package session holds the explicit per-operator context passed to every
// register operation in place of ambient auth/session storage.
package session

import (
	"errors"
	"time"
)

// ErrNoSession is returned when an operation is attempted without an authenticated operator.
var ErrNoSession = errors.New("no authenticated operator session")

// Context identifies the operator behind a request and carries the bearer
// token forwarded to the backend. It lives from login until logout; the
// gateway rebuilds it from the token on every request.
type Context struct {
	OperatorID   string
	OperatorName string
	Role         string
	Token        string
	ExpiresAt    time.Time
}

// New returns a Context, rejecting values that cannot authenticate against the backend.
func New(operatorID, operatorName, role, token string, expiresAt time.Time) (Context, error) {
	if operatorID == "" || token == "" {
		return Context{}, ErrNoSession
	}
	return Context{
		OperatorID:   operatorID,
		OperatorName: operatorName,
		Role:         role,
		Token:        token,
		ExpiresAt:    expiresAt,
	}, nil
}

// Valid reports whether the context can still be used at instant now.
func (c Context) Valid(now time.Time) bool {
	if c.OperatorID == "" || c.Token == "" {
		return false
	}
	return c.ExpiresAt.IsZero() || now.Before(c.ExpiresAt)
}
