package authcore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/authcore/internal"
	internalaudit "github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/internal/flows"
	internalmetrics "github.com/MrEthical07/authcore/internal/metrics"
	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/refresh"
)

// Engine is the token lifecycle engine: it mints access/refresh pairs,
// executes the refresh rotation protocol against the ledger, and revokes
// refresh tokens. Construct it through [New]; the zero value is not usable.
//
// All methods are safe for concurrent use.
type Engine struct {
	config   Config
	jwt      *jwt.Manager
	store    refresh.Store
	verifier CredentialVerifier
	metrics  *internalmetrics.Metrics
	audit    *internalaudit.Dispatcher
	logger   *slog.Logger
}

// Login verifies the credentials against the configured
// [CredentialVerifier] and, on success, mints and persists a fresh token
// pair. Verifier rejections surface as [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, email, password string) (AuthResult, error) {
	if e == nil || e.jwt == nil {
		return AuthResult{}, ErrEngineNotReady
	}

	identity, err := e.verifier.Verify(ctx, email, password)
	if err != nil {
		e.metrics.Inc(internalmetrics.MetricIssueFailure)
		e.emitAudit(ctx, AuditEvent{
			EventType: EventTokenIssue,
			Success:   false,
			Error:     ErrInvalidCredentials.Error(),
		})
		e.logger.WarnContext(ctx, "login rejected", "error", err)
		return AuthResult{}, ErrInvalidCredentials
	}

	return e.issueFor(ctx, identity)
}

// Register creates the account through the configured [CredentialVerifier]
// and mints the first token pair for it. [ErrAccountExists] from the
// verifier passes through unchanged.
func (e *Engine) Register(ctx context.Context, email, password string) (AuthResult, error) {
	if e == nil || e.jwt == nil {
		return AuthResult{}, ErrEngineNotReady
	}

	identity, err := e.verifier.Register(ctx, email, password)
	if err != nil {
		e.metrics.Inc(internalmetrics.MetricIssueFailure)
		e.emitAudit(ctx, AuditEvent{
			EventType: EventTokenIssue,
			Success:   false,
			Error:     err.Error(),
		})
		if errors.Is(err, ErrAccountExists) {
			return AuthResult{}, err
		}
		return AuthResult{}, fmt.Errorf("register: %w", err)
	}

	return e.issueFor(ctx, identity)
}

// Refresh executes the rotation protocol for a presented (access token,
// refresh token) pair.
//
// Protocol rejections are values: the returned [AuthResult] has Result set
// to false and Errors populated with every violated condition, and the
// error is nil. A non-nil error means the ledger or signer itself failed
// and nothing can be said about the pair.
func (e *Engine) Refresh(ctx context.Context, accessToken, refreshToken string) (AuthResult, error) {
	if e == nil || e.jwt == nil {
		return AuthResult{}, ErrEngineNotReady
	}

	res := flows.RunRefresh(ctx, accessToken, refreshToken, flows.RefreshDeps{
		ParseAccess: e.jwt.Parse,
		Store:       e.store,
		Now:         e.config.Now,
		IssuePair:   e.issuePair,
	})

	if res.Err != nil {
		e.metrics.Inc(internalmetrics.MetricRefreshFailure)
		e.emitAudit(ctx, AuditEvent{
			EventType: EventTokenRefresh,
			UserID:    res.UserID,
			JWTID:     res.JWTID,
			Success:   false,
			Error:     res.Err.Error(),
		})
		e.logger.ErrorContext(ctx, "refresh failed", "error", res.Err)
		return AuthResult{}, res.Err
	}

	if res.Rejected() {
		e.metrics.Inc(internalmetrics.MetricRefreshRejected)
		if res.ReuseDetected {
			e.metrics.Inc(internalmetrics.MetricRefreshReuseDetected)
			e.emitAudit(ctx, AuditEvent{
				EventType: EventTokenReuseDetected,
				UserID:    res.UserID,
				JWTID:     res.JWTID,
				Success:   false,
				Reasons:   reasonStrings(res.Reasons),
			})
			e.logger.WarnContext(ctx, "refresh token reuse detected",
				"user_id", res.UserID, "jwt_id", res.JWTID)
		}
		e.emitAudit(ctx, AuditEvent{
			EventType: EventTokenRefreshRejected,
			UserID:    res.UserID,
			JWTID:     res.JWTID,
			Success:   false,
			Reasons:   reasonStrings(res.Reasons),
		})
		return AuthResult{
			Result: false,
			Errors: reasonStrings(res.Reasons),
		}, nil
	}

	e.metrics.Inc(internalmetrics.MetricRefreshSuccess)
	e.emitAudit(ctx, AuditEvent{
		EventType: EventTokenRefresh,
		UserID:    res.UserID,
		JWTID:     res.JWTID,
		Success:   true,
	})
	return AuthResult{
		Token:        res.AccessToken,
		RefreshToken: res.RefreshToken,
		Result:       true,
	}, nil
}

// Revoke marks a single refresh token unusable. Revocation is terminal and
// monotonic; revoking an already-revoked token succeeds. Unknown tokens
// surface as [ErrRefreshTokenNotFound].
func (e *Engine) Revoke(ctx context.Context, refreshToken string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	err := e.store.Revoke(ctx, refreshToken)
	switch {
	case errors.Is(err, refresh.ErrNotFound):
		return ErrRefreshTokenNotFound
	case err != nil:
		e.logger.ErrorContext(ctx, "revoke failed", "error", err)
		return err
	}

	e.metrics.Inc(internalmetrics.MetricRevoke)
	e.emitAudit(ctx, AuditEvent{
		EventType: EventTokenRevoke,
		Success:   true,
	})
	return nil
}

// MetricsSnapshot returns the current counter values.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Close flushes and stops the audit dispatcher. The engine must not be
// used after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// issueFor mints a pair for a verified identity and maps it to the wire
// result.
func (e *Engine) issueFor(ctx context.Context, identity Identity) (AuthResult, error) {
	access, refreshTok, jti, err := e.issuePair(ctx, identity.UserID, identity.Email)
	if err != nil {
		e.metrics.Inc(internalmetrics.MetricIssueFailure)
		e.emitAudit(ctx, AuditEvent{
			EventType: EventTokenIssue,
			UserID:    identity.UserID,
			Success:   false,
			Error:     err.Error(),
		})
		e.logger.ErrorContext(ctx, "pair issuance failed", "error", err)
		return AuthResult{}, err
	}

	e.metrics.Inc(internalmetrics.MetricIssueSuccess)
	e.emitAudit(ctx, AuditEvent{
		EventType: EventTokenIssue,
		UserID:    identity.UserID,
		JWTID:     jti,
		Success:   true,
	})
	return AuthResult{
		Token:        access,
		RefreshToken: refreshTok,
		Result:       true,
	}, nil
}

// issuePair signs an access token, generates the paired opaque refresh
// token, and persists the ledger record binding the two through the jti.
func (e *Engine) issuePair(ctx context.Context, userID, email string) (string, string, string, error) {
	access, jti, _, err := e.jwt.Issue(userID, email)
	if err != nil {
		return "", "", "", fmt.Errorf("sign access token: %w", err)
	}

	opaque, err := internal.NewOpaqueToken()
	if err != nil {
		return "", "", "", err
	}

	now := e.config.Now().UTC()
	record := &refresh.Record{
		Token:     opaque,
		JWTID:     jti,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(e.config.Refresh.TTL),
	}
	if err := e.store.Create(ctx, record); err != nil {
		return "", "", "", fmt.Errorf("persist refresh record: %w", err)
	}

	return access, opaque, jti, nil
}

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e.audit == nil {
		return
	}
	event.Timestamp = e.now()
	e.audit.Emit(ctx, event)
}

func (e *Engine) now() time.Time {
	return e.config.Now().UTC()
}

func reasonStrings(reasons []flows.Reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}
