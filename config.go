package authcore

import (
	"errors"
	"time"
)

// Config is the process-wide configuration for an [Engine]. It is loaded
// once, cloned by [Builder.Build], and never mutated afterwards.
type Config struct {
	JWT     JWTConfig
	Refresh RefreshConfig
	Audit   AuditConfig
	Metrics MetricsConfig

	// Now is the engine's clock. Defaults to time.Now. Injected so expiry
	// boundaries are testable without sleeping.
	Now func() time.Time
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures access-token signing. The algorithm is not
// configurable: every token in the system is HS512, and anything else is
// rejected during parsing.
type JWTConfig struct {
	// Secret is the single shared signing secret. Minimum 32 bytes.
	Secret []byte
	// AccessTTL is the access-token lifetime.
	AccessTTL time.Duration
	// Issuer is an optional iss claim.
	Issuer string
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig configures the refresh-token ledger.
type RefreshConfig struct {
	// TTL is the refresh-token lifetime. Defaults to one year.
	TTL time.Duration
	// RedisPrefix namespaces ledger keys when the Redis backend is built
	// through [Builder.WithRedis].
	RedisPrefix string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

const defaultRefreshTTL = 365 * 24 * time.Hour

// DefaultConfig returns the baseline configuration: 15-minute access
// tokens, one-year refresh tokens, audit and metrics enabled. The signing
// secret has no default and must be supplied.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL: 15 * time.Minute,
		},
		Refresh: RefreshConfig{
			TTL: defaultRefreshTTL,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT.Secret must be at least 32 bytes")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT.AccessTTL must be positive")
	}
	if c.Refresh.TTL <= 0 {
		return errors.New("Refresh.TTL must be positive")
	}
	if c.Refresh.TTL <= c.JWT.AccessTTL {
		return errors.New("Refresh.TTL must exceed JWT.AccessTTL")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
