package repository

import "errors"

var (
	ErrNotFound = errors.New("entity not found")
	// ErrOptimisticLock means the cart kept changing underneath a write and the
	// bounded retries ran out.
	ErrOptimisticLock = errors.New("optimistic lock conflict: cart was modified by another writer")
	// ErrSessionUnstable means a session key kept expiring between bind attempts.
	ErrSessionUnstable = errors.New("session binding could not be established")
)
