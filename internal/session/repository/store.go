package repository

import (
	"context"
	"errors"
)

// TokenKey is the single well-known key the session token lives under.
const TokenKey = "session_token"

// ErrNoToken is returned by Load when nothing is persisted.
var ErrNoToken = errors.New("no session token stored")

// TokenStore persists the opaque bearer token across client runs.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Close() error
}
