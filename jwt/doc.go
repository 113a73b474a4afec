// Package jwt issues and verifies the HS512-signed access tokens used by
// authcore.
//
// # Architecture boundaries
//
// This package owns claim construction, signing, and signature/algorithm
// verification. It deliberately does not validate expiry: the refresh
// protocol must be able to inspect the claims of an expired token, so
// lifetime enforcement belongs to the validator, not the parser.
//
// # What this package must NOT do
//
//   - Accept any signing algorithm other than HS512.
//   - Touch the refresh ledger or perform any I/O.
//   - Import authcore or refresh (no import cycles).
package jwt
