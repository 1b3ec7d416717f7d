package db

import "errors"

var (
	// ErrIO is returned when the storage file cannot be read or written
	ErrIO = errors.New("storage i/o failure")

	// ErrFormat is returned when the storage file exists but does not hold
	// a project collection
	ErrFormat = errors.New("storage format error")
)
