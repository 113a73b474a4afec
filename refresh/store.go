package refresh

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no record exists for a token string.
	ErrNotFound = errors.New("refresh token not found")
	// ErrUnavailable wraps backend faults (connection refused, timeouts).
	// Callers treat it as an infrastructure failure, not a validation one.
	ErrUnavailable = errors.New("refresh store unavailable")
)

// Record is one issuance event in the rotation ledger.
type Record struct {
	// Token is the opaque refresh-token string handed to the client:
	// a crypto-random prefix plus a UUID uniqueness suffix. Primary key.
	Token string
	// JWTID is the jti of the access token issued alongside this record.
	// The pair must be presented together; mismatches are rejected.
	JWTID  string
	UserID string

	IssuedAt  time.Time
	ExpiresAt time.Time

	// Used transitions false→true exactly once, at redemption.
	Used bool
	// Revoked transitions false→true only (logout or security event).
	Revoked bool
}

// Store is the durable ledger of issued refresh tokens.
//
// Implementations must make Redeem safe under concurrent calls for the same
// token: of all callers racing on an unredeemed record, exactly one observes
// true.
type Store interface {
	// Create inserts a new record. One row per issuance; rows are not
	// reused or deleted.
	Create(ctx context.Context, rec *Record) error

	// Find returns the record for the given token string, or ErrNotFound.
	Find(ctx context.Context, token string) (*Record, error)

	// Redeem atomically marks the record used, conditioned on it being
	// neither used nor revoked. It reports whether this caller was first.
	// A missing record yields (false, ErrNotFound).
	Redeem(ctx context.Context, token string) (bool, error)

	// Revoke marks the record revoked. Monotonic: revoking an already
	// revoked record is a no-op. A missing record yields ErrNotFound.
	Revoke(ctx context.Context, token string) error
}
