package authcore

import (
	"context"
	"io"

	internalaudit "github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/internal/flows"
	internalmetrics "github.com/MrEthical07/authcore/internal/metrics"
)

// AuthResult is the wire-shaped outcome of [Engine.Login],
// [Engine.Register], and [Engine.Refresh]. Result is false when the
// operation was rejected by the validation protocol, in which case Errors
// carries every violated condition as a stable reason code (see [Reason]).
// Serialized as JSON; field names are matched case-insensitively by the
// known clients.
type AuthResult struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	Result       bool     `json:"result"`
	Errors       []string `json:"errors,omitempty"`
}

// Identity is a verified user identity produced by a [CredentialVerifier].
type Identity struct {
	UserID string
	Email  string
}

// CredentialVerifier is the external credential-store collaborator.
// Password storage and hashing live behind this interface; the engine only
// ever sees verified identities.
type CredentialVerifier interface {
	// Verify checks an email/password pair and returns the verified
	// identity, or an error when authentication fails.
	Verify(ctx context.Context, email, password string) (Identity, error)

	// Register creates a new account and returns its identity. Should
	// return [ErrAccountExists] (possibly wrapped) for duplicate emails.
	Register(ctx context.Context, email, password string) (Identity, error)
}

// Reason is a stable machine-checkable code for one violated refresh
// condition, carried in [AuthResult].Errors.
type Reason = flows.Reason

const (
	ReasonParseError            = flows.ReasonParseError
	ReasonSignatureInvalid      = flows.ReasonSignatureInvalid
	ReasonAlgorithmMismatch     = flows.ReasonAlgorithmMismatch
	ReasonAccessTokenNotExpired = flows.ReasonAccessTokenNotExpired
	ReasonRefreshTokenNotFound  = flows.ReasonRefreshTokenNotFound
	ReasonRefreshTokenExpired   = flows.ReasonRefreshTokenExpired
	ReasonRefreshTokenUsed      = flows.ReasonRefreshTokenUsed
	ReasonRefreshTokenRevoked   = flows.ReasonRefreshTokenRevoked
	ReasonTokenPairMismatch     = flows.ReasonTokenPairMismatch
)

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricsSnapshot is a point-in-time copy of the engine's counters, keyed
// by metric name.
type MetricsSnapshot = internalmetrics.Snapshot
