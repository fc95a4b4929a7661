package mirrorfs

import "errors"

var (
	// ErrAlreadyStarted is returned by Start once the cache has left the
	// unstarted state, including after a failed start.
	ErrAlreadyStarted = errors.New("mirrorfs: already started")

	// ErrStopped is returned by Start on a cache that was stopped.
	ErrStopped = errors.New("mirrorfs: stopped")

	// ErrNotADirectory is returned by Start when the configured path exists
	// but is not a directory.
	ErrNotADirectory = errors.New("mirrorfs: not a directory")
)
