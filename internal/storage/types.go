package storage

import "errors"

var (
	ErrNotInitialized = errors.New("storage not initialized")
	ErrEmptyKey       = errors.New("empty storage key")
)
