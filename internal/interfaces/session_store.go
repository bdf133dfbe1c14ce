package interfaces

import (
	"context"
	"time"
)

// SessionStore keeps the ids of access tokens revoked before their expiry.
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
