// Package internal holds helpers shared by the root package and its flows:
// opaque refresh-token string generation.
package internal
