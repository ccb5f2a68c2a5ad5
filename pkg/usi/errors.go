package usi

import "errors"

// Sentinel errors for the driver's failure modes (spec §7). Wrap with
// fmt.Errorf("...: %w", ErrX) and unwrap with errors.Is.
var (
	// ErrNotFound means the engine executable does not exist.
	ErrNotFound = errors.New("engine not found")
	// ErrConnection means the engine process failed to spawn or a pipe
	// could not be established.
	ErrConnection = errors.New("engine connection error")
	// ErrInvalidState means an operation was attempted outside the state
	// that permits it (e.g. starting a self-play game while one is
	// already in progress).
	ErrInvalidState = errors.New("invalid engine state")
	// ErrInvalidTime means a time-control string carried an unrecognized
	// token.
	ErrInvalidTime = errors.New("invalid time control")
	// ErrDisconnectedWhileWaiting means a blocking wait observed the
	// driver transition to Disconnected before its predicate was met.
	ErrDisconnectedWhileWaiting = errors.New("engine disconnected while waiting")
)
