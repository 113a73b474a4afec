// Package flows implements the transport-free token lifecycle flows behind
// the root engine. Flow functions take explicit dependency structs so the
// validation protocol can be exercised in isolation, without an engine or a
// real backend.
package flows
