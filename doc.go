// Package authcore provides a token lifecycle engine built on JWT access
// tokens and single-use rotating refresh tokens backed by a persisted
// rotation ledger.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (AuthResult, AuditEvent, MetricsSnapshot). Signing and
// parsing live in the jwt sub-package, the ledger backends in refresh, and
// all internal coordination (flow orchestration, audit dispatch, counters)
// lives under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Store, hash, or verify passwords. Credentials belong to the caller's
//     [CredentialVerifier]; the engine only sees verified identities.
//   - Include token material in audit events or log output. The jti is the
//     only audit-safe handle for a token pair.
//   - Report a refresh rejection as a Go error. Protocol rejections are
//     values in [AuthResult]; errors mean the ledger or signer failed.
//
// # Rotation contract
//
// A refresh token is single-use. Redeeming it is atomic at the store level:
// of any number of concurrent refresh calls presenting the same token,
// exactly one receives a new pair and the rest are rejected with
// refresh_token_already_used. Validation accumulates every violated
// condition before rejecting, and a rejected call never mutates the ledger.
package authcore
