package attendance

import "errors"

var (
	// ErrAlreadyInitialized is returned by Initialize when an admin is already set.
	ErrAlreadyInitialized = errors.New("ledger already initialized")
	// ErrNotInitialized is returned by admin-gated operations before Initialize.
	ErrNotInitialized = errors.New("ledger not initialized")
	// ErrUnauthorized is returned when the invocation carries no authorization proof for the required address.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoActiveSession is returned by Register when no session hash has been set.
	ErrNoActiveSession = errors.New("no active session")
	// ErrInvalidHash is returned by Register when the submitted hash does not match the active session hash.
	ErrInvalidHash = errors.New("submitted hash does not match active session")
	// ErrInvalidNickname is returned by SetProfile for nicknames outside 3–32 characters.
	ErrInvalidNickname = errors.New("nickname length out of range")
	// ErrInvalidAddress is returned when a mutating operation receives an empty address.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrEngineNotReady is returned when an Engine is used before it was built.
	ErrEngineNotReady = errors.New("engine not initialized")
)
