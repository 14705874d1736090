package shopguard

import "errors"

var (
	// ErrNoToken is returned when a request carries neither an access-token
	// cookie nor a bearer header.
	ErrNoToken = errors.New("no token provided")
	// ErrInvalidCredentials is returned on login when the email is unknown or
	// the password does not match. The two cases are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountExists is returned on signup when the email is already taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrSessionMismatch is returned when a structurally valid refresh token
	// is not the currently recorded one for its subject: superseded by a newer
	// login, revoked by logout, or evicted by the store.
	ErrSessionMismatch = errors.New("refresh token superseded or revoked")
	// ErrUserNotFound is returned when a token's subject no longer exists in
	// the user store.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden is returned by the role gate when the authenticated
	// identity lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrEngineNotReady is returned when an Engine is used before Build
	// completed.
	ErrEngineNotReady = errors.New("engine not initialized")
)
