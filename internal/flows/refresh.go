package flows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/refresh"
)

// Reason is a stable machine-checkable code for one violated refresh
// condition. Reasons travel to HTTP clients as plain strings; client
// auto-refresh wrappers switch on them to decide between forcing a
// re-login and keeping their still-valid tokens.
type Reason string

const (
	ReasonParseError            Reason = "parse_error"
	ReasonSignatureInvalid      Reason = "signature_invalid"
	ReasonAlgorithmMismatch     Reason = "algorithm_mismatch"
	ReasonAccessTokenNotExpired Reason = "access_token_not_expired"
	ReasonRefreshTokenNotFound  Reason = "refresh_token_not_found"
	ReasonRefreshTokenExpired   Reason = "refresh_token_expired"
	ReasonRefreshTokenUsed      Reason = "refresh_token_already_used"
	ReasonRefreshTokenRevoked   Reason = "refresh_token_revoked"
	ReasonTokenPairMismatch     Reason = "token_pair_mismatch"
)

// Message returns the human-readable description of a reason.
func (r Reason) Message() string {
	switch r {
	case ReasonParseError:
		return "access token could not be parsed"
	case ReasonSignatureInvalid:
		return "access token signature is not valid"
	case ReasonAlgorithmMismatch:
		return "access token is not signed with the expected algorithm"
	case ReasonAccessTokenNotExpired:
		return "access token has not expired yet, refresh not permitted"
	case ReasonRefreshTokenNotFound:
		return "refresh token does not exist"
	case ReasonRefreshTokenExpired:
		return "refresh token has expired, user needs to log in again"
	case ReasonRefreshTokenUsed:
		return "refresh token has already been used"
	case ReasonRefreshTokenRevoked:
		return "refresh token has been revoked"
	case ReasonTokenPairMismatch:
		return "refresh token does not match the presented access token"
	default:
		return string(r)
	}
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	ParseAccess func(string) (*jwt.AccessClaims, error)
	Store       refresh.Store
	Now         func() time.Time

	// IssuePair mints and persists a fresh pair for the resolved user.
	// Returns the signed access token, the opaque refresh token, and the
	// new jti.
	IssuePair func(ctx context.Context, userID, email string) (string, string, string, error)
}

// RefreshResult carries either the issued token pair or the full set of
// violated conditions. Err is reserved for infrastructure faults; protocol
// rejections are values in Reasons.
type RefreshResult struct {
	Reasons       []Reason
	Err           error
	ReuseDetected bool

	UserID       string
	JWTID        string
	AccessToken  string
	RefreshToken string
}

// Rejected reports whether the presented pair violated the protocol.
func (r RefreshResult) Rejected() bool {
	return len(r.Reasons) > 0
}

// RunRefresh executes the full validation/rotation protocol for a presented
// (access token, refresh token) pair.
//
// Every applicable condition is evaluated and collected: the ledger lookup
// and ownership checks run even when parsing already failed, so a caller
// sees all violated conditions at once. No state is mutated unless the pair
// passes every check; only then is the stored record atomically redeemed
// and a new pair minted.
func RunRefresh(ctx context.Context, accessToken, refreshToken string, deps RefreshDeps) RefreshResult {
	var reasons []Reason
	now := deps.Now().UTC()

	claims, err := deps.ParseAccess(accessToken)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrAlgorithmMismatch):
			reasons = append(reasons, ReasonAlgorithmMismatch)
		case errors.Is(err, jwt.ErrSignatureInvalid):
			reasons = append(reasons, ReasonSignatureInvalid)
		default:
			reasons = append(reasons, ReasonParseError)
		}
		claims = nil
	}

	jti := ""
	if claims != nil {
		jti = claims.ID

		// The refresh protocol exists to trade in an EXPIRED access token.
		// A still-valid token must not be refreshable.
		exp := claims.ExpiresAtTime()
		if exp.IsZero() || now.Before(exp) {
			reasons = append(reasons, ReasonAccessTokenNotExpired)
		}
	}

	rec, err := deps.Store.Find(ctx, refreshToken)
	switch {
	case errors.Is(err, refresh.ErrNotFound):
		reasons = append(reasons, ReasonRefreshTokenNotFound)
		rec = nil
	case err != nil:
		return RefreshResult{Err: err, JWTID: jti}
	}

	reuse := false
	if rec != nil {
		if now.After(rec.ExpiresAt) {
			reasons = append(reasons, ReasonRefreshTokenExpired)
		}
		if rec.Used {
			reasons = append(reasons, ReasonRefreshTokenUsed)
			reuse = true
		}
		if rec.Revoked {
			reasons = append(reasons, ReasonRefreshTokenRevoked)
		}
		if claims != nil && claims.ID != rec.JWTID {
			reasons = append(reasons, ReasonTokenPairMismatch)
		}
	}

	if len(reasons) > 0 {
		res := RefreshResult{Reasons: reasons, ReuseDetected: reuse, JWTID: jti}
		if rec != nil {
			res.UserID = rec.UserID
		}
		return res
	}

	// All checks passed. Redeem atomically; of concurrent callers holding
	// the same token, exactly one observes won == true.
	won, err := deps.Store.Redeem(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, refresh.ErrNotFound) {
			return RefreshResult{
				Reasons: []Reason{ReasonRefreshTokenNotFound},
				UserID:  rec.UserID,
				JWTID:   jti,
			}
		}
		return RefreshResult{Err: err, UserID: rec.UserID, JWTID: jti}
	}
	if !won {
		return RefreshResult{
			Reasons:       []Reason{ReasonRefreshTokenUsed},
			ReuseDetected: true,
			UserID:        rec.UserID,
			JWTID:         jti,
		}
	}

	access, newRefresh, newJTI, err := deps.IssuePair(ctx, rec.UserID, claims.Email)
	if err != nil {
		// The old record is already marked used; this attempt is fatal and
		// the caller must re-authenticate.
		return RefreshResult{
			Err:    fmt.Errorf("pair issuance after redeem: %w", err),
			UserID: rec.UserID,
			JWTID:  jti,
		}
	}

	return RefreshResult{
		UserID:       rec.UserID,
		JWTID:        newJTI,
		AccessToken:  access,
		RefreshToken: newRefresh,
	}
}
