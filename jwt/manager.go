package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// signingMethod is the single algorithm accepted anywhere in the system.
// Tokens declaring any other algorithm are rejected in the keyfunc, before
// signature verification, regardless of whether their signature would verify.
var signingMethod = jwt.SigningMethodHS512

var (
	// ErrTokenMalformed is returned by [Manager.Parse] for input that is not
	// a structurally valid token.
	ErrTokenMalformed = errors.New("access token malformed")
	// ErrSignatureInvalid is returned by [Manager.Parse] when the signature
	// does not verify against the configured secret.
	ErrSignatureInvalid = errors.New("access token signature invalid")
	// ErrAlgorithmMismatch is returned by [Manager.Parse] when the token
	// header declares a signing algorithm other than HS512.
	ErrAlgorithmMismatch = errors.New("access token signing algorithm mismatch")
)

// Config holds the signing inputs for a [Manager]. Loaded once at startup
// and treated as immutable afterwards.
type Config struct {
	Secret    []byte
	AccessTTL time.Duration
	Issuer    string

	// Now overrides the time source. Defaults to time.Now. Injected so
	// expiry-boundary behavior is testable without sleeping.
	Now func() time.Time
}

// AccessClaims is the claim set carried by every access token. Subject and
// Email both carry the user's email; UID carries the user identifier; ID
// (jti) binds the token to the refresh record issued alongside it.
type AccessClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ExpiresAtTime reports the expiry instant of a parsed claim set, or the
// zero time when the claim is absent.
func (c *AccessClaims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Manager creates and parses access tokens with a single shared HS512
// secret. Safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a [Manager].
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("hs512 secret must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{config: cfg}, nil
}

// Issue signs a fresh access token for the given user. It returns the
// compact token, the generated jti, and the expiry instant. The jti must be
// persisted next to the paired refresh record; the refresh protocol rejects
// pairs whose identifiers do not match.
func (m *Manager) Issue(userID, email string) (string, string, time.Time, error) {
	now := m.config.Now().UTC()
	jti := uuid.NewString()
	expiresAt := now.Add(m.config.AccessTTL)

	claims := AccessClaims{
		UID:   userID,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if m.config.Issuer != "" {
		claims.Issuer = m.config.Issuer
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(m.config.Secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, jti, expiresAt, nil
}

// Parse verifies the signature and algorithm of a presented token and
// returns its claims.
//
// Parse does NOT enforce the expiry claim. The refresh protocol must accept
// a token that is already expired — expiry gating is the validator's
// explicit, separate check against the returned claims.
//
// Failures are classified into [ErrTokenMalformed], [ErrAlgorithmMismatch],
// and [ErrSignatureInvalid].
func (m *Manager) Parse(tokenStr string) (*AccessClaims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != signingMethod.Alg() {
			return nil, fmt.Errorf("%w: got %s", ErrAlgorithmMismatch, t.Method.Alg())
		}
		return m.config.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAlgorithmMismatch):
			return nil, ErrAlgorithmMismatch
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
