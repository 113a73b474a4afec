package authcore

import "errors"

var (
	// ErrInvalidCredentials is returned by [Engine.Login] when the
	// credential verifier rejects the email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountExists is returned by [Engine.Register] when the email is
	// already taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrRefreshTokenNotFound is returned by [Engine.Revoke] for unknown
	// token strings.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
