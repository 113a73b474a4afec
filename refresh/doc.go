// Package refresh persists the rotation ledger for opaque refresh tokens.
//
// Every issued access token has exactly one ledger [Record], keyed by the
// opaque refresh-token string and carrying the jti of the access token it
// was issued with. Records are single-use: [Store.Redeem] flips the used
// flag through an atomic conditional update so that concurrent redemption
// attempts for the same token produce exactly one winner. Records are never
// deleted in normal operation; expired and redeemed rows stay behind as an
// audit trail.
//
// Three backends are provided: an in-memory store for tests and examples,
// a Redis store (hash per token, Lua-scripted conditional redeem), and a
// Postgres store (conditional UPDATE checked via affected-row count, schema
// managed with embedded goose migrations).
//
// # Architecture boundaries
//
// This package owns record persistence and the atomicity of redeem/revoke.
// The validation protocol (what makes a presented pair acceptable) lives in
// the engine, not here.
package refresh
