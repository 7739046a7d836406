package index

import "errors"

var (
	// ErrNotFound indicates no index exists at the given location.
	ErrNotFound = errors.New("index not found")
	// ErrCorrupt indicates the index configuration or structure is
	// unreadable.
	ErrCorrupt = errors.New("index corrupt")
	// ErrLocked indicates another process holds the index write lock.
	ErrLocked = errors.New("index locked by another process")
)
